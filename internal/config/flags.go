package config

import (
	"flag"
	"os"
	"time"

	"github.com/dkoval/mailshare/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-n string   NATS server URL
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string   public base URL for published objects
//	-a string   local attachment cache directory
//	-w int      debounce window, seconds
//	-m string   sharer email address
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-n", "-u", "-p", "-b", "-g", "-e", "-l", "-a", "-w", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.NatsURL, "n", config.NatsURL, "NATS server URL")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicBaseURL, "l", config.S3PublicBaseURL, "public base URL for published objects")
	fs.StringVar(&config.AttachmentCacheDir, "a", config.AttachmentCacheDir, "attachment cache directory")
	fs.StringVar(&config.SharerEmail, "m", config.SharerEmail, "sharer email")

	debounceSeconds := fs.Int("w", int(config.DebounceDelay.Seconds()), "debounce window (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.DebounceDelay = time.Duration(*debounceSeconds) * time.Second
}
