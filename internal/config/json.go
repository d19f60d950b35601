package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dkoval/mailshare/internal/flagx"
	"github.com/dkoval/mailshare/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON config
// files. Interval fields use timex.Duration so both "5s" strings and
// integer nanoseconds parse. After unmarshalling, its fields are copied
// into the runtime Config.
type JsonConfig struct {
	DatabaseDSN        string         `json:"database_dsn"`
	NatsURL            string         `json:"nats_url"`
	NatsSubjectChanges string         `json:"nats_subject_changes"`
	NatsSubjectShare   string         `json:"nats_subject_share"`
	NatsSubjectLocate  string         `json:"nats_subject_locate"`
	NatsSubjectMeta    string         `json:"nats_subject_meta"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	S3PublicBaseURL    string         `json:"s3_public_base_url"`
	AttachmentCacheDir string         `json:"attachment_cache_dir"`
	DebounceDelay      timex.Duration `json:"debounce_delay"`
	MetaKey            string         `json:"meta_key"`
	SharerFirstName    string         `json:"sharer_first_name"`
	SharerLastName     string         `json:"sharer_last_name"`
	SharerEmail        string         `json:"sharer_email"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. Absent flag means no file is
// loaded. Unset JSON fields keep the values already present in Config.
// An unreadable or invalid file panics: a half-applied config is worse
// than refusing to start.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlayString(&config.DatabaseDSN, c.DatabaseDSN)
	overlayString(&config.NatsURL, c.NatsURL)
	overlayString(&config.NatsSubjectChanges, c.NatsSubjectChanges)
	overlayString(&config.NatsSubjectShare, c.NatsSubjectShare)
	overlayString(&config.NatsSubjectLocate, c.NatsSubjectLocate)
	overlayString(&config.NatsSubjectMeta, c.NatsSubjectMeta)
	overlayString(&config.S3RootUser, c.S3RootUser)
	overlayString(&config.S3RootPassword, c.S3RootPassword)
	overlayString(&config.S3Bucket, c.S3Bucket)
	overlayString(&config.S3Region, c.S3Region)
	overlayString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlayString(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	overlayString(&config.AttachmentCacheDir, c.AttachmentCacheDir)
	overlayString(&config.MetaKey, c.MetaKey)
	overlayString(&config.SharerFirstName, c.SharerFirstName)
	overlayString(&config.SharerLastName, c.SharerLastName)
	overlayString(&config.SharerEmail, c.SharerEmail)

	if c.DebounceDelay.Duration != 0 {
		config.DebounceDelay = time.Duration(c.DebounceDelay.Duration)
	}
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
