package service

import (
	"errors"
	"net/url"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

const defaultPhoneRegion = "US"

var idnaProfile = idna.Lookup

// ContactNormalizer canonicalises contact fields before they are catalogued.
type ContactNormalizer struct {
	DefaultRegion string
}

// NewContactNormalizer creates a normalizer that parses national numbers in region.
func NewContactNormalizer(region string) *ContactNormalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = defaultPhoneRegion
	}
	return &ContactNormalizer{DefaultRegion: region}
}

// Phone returns the E.164 form of raw, or "" when it is not a valid number.
func (n *ContactNormalizer) Phone(raw string) string {
	return normalizePhone(raw, n.DefaultRegion)
}

// WebsiteHost returns the lower-case ASCII host of a website without "www.".
func (n *ContactNormalizer) WebsiteHost(raw string) string {
	u, err := sanitizeURL(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(strings.Trim(u.Hostname(), "."))
	host = strings.TrimPrefix(host, "www.")
	ascii, err := idnaProfile.ToASCII(host)
	if err != nil || !isDomainValid(ascii) {
		return ""
	}
	return ascii
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "N/A" {
		return ""
	}
	if region == "" {
		region = defaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "N/A" {
		return nil, errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.New("invalid url")
	}
	return u, nil
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	parts := strings.Split(domain, ".")
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
