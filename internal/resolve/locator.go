// Package resolve maps inbound share locators back to local
// conversations despite clock skew between the locator's producer and
// this store.
package resolve

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/dkoval/mailshare/internal/common"
	"github.com/dkoval/mailshare/internal/models"
)

// ParseLocator decodes a URL-encoded locator query string with fields
// subject (required), date and lastDate (epoch seconds, one of the two
// required). When both are present, date wins: it anchors off the
// thread's first message and is the more precise clue.
func ParseLocator(raw string) (*models.Locator, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrBadLocator, err)
	}

	loc := &models.Locator{Subject: values.Get("subject")}
	if loc.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", common.ErrBadLocator)
	}

	loc.Date, err = epochField(values, "date")
	if err != nil {
		return nil, err
	}
	loc.LastDate, err = epochField(values, "lastDate")
	if err != nil {
		return nil, err
	}

	if loc.Date == nil && loc.LastDate == nil {
		return nil, fmt.Errorf("%w: missing date and lastDate", common.ErrBadLocator)
	}
	return loc, nil
}

func epochField(values url.Values, name string) (*time.Time, error) {
	s := values.Get(name)
	if s == "" {
		return nil, nil
	}
	epoch, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad %s: %v", common.ErrBadLocator, name, err)
	}
	t := time.Unix(epoch, 0).UTC()
	return &t, nil
}
