package app_setting

import (
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// AppSetting holds the tunables of the api server. Secrets and endpoints are
// read from env, everything here has a sane default and can be overridden by
// a yaml file passed with -config.
type AppSetting struct {
	// bcrypt cost factor used when hashing passwords.
	BCRYPT_COST int `yaml:"BCRYPT_COST"`
	// Lifetime of a session token in hours.
	SESSION_TOKEN_TTL_HOUR int64 `yaml:"SESSION_TOKEN_TTL_HOUR"`
	// Lifetime of a password reset token in minutes.
	RESET_TOKEN_TTL_MINUTE int64 `yaml:"RESET_TOKEN_TTL_MINUTE"`
	// Full friend edge reconcile scan runs every other interval.
	RECONCILE_EVERY_SECOND int64 `yaml:"RECONCILE_EVERY_SECOND"`
	// Maximum number of runes in a comment.
	MAX_COMMENT_LENGTH int `yaml:"MAX_COMMENT_LENGTH"`
	// Maximum size of an uploaded picture in bytes.
	MAX_UPLOAD_BYTES int64 `yaml:"MAX_UPLOAD_BYTES"`
	// Number of attempts for an idempotent friendship write.
	FRIEND_WRITE_ATTEMPTS int `yaml:"FRIEND_WRITE_ATTEMPTS"`
}

func Default() AppSetting {
	return AppSetting{
		BCRYPT_COST:            10,
		SESSION_TOKEN_TTL_HOUR: 365 * 24,
		RESET_TOKEN_TTL_MINUTE: 15,
		RECONCILE_EVERY_SECOND: 600,
		MAX_COMMENT_LENGTH:     1000,
		MAX_UPLOAD_BYTES:       30 << 20,
		FRIEND_WRITE_ATTEMPTS:  3,
	}
}

// ParseAppSetting reads the yaml file at path on top of the defaults. An empty
// path returns the defaults.
func ParseAppSetting(path string) (AppSetting, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		return c, errors.Wrap(err, "fail to read app setting file")
	}
	if err = yaml.Unmarshal(yamlFile, &c); err != nil {
		return c, errors.Wrap(err, "fail to unmarshal app setting")
	}
	return c, nil
}

func (s AppSetting) SessionTokenTTL() time.Duration {
	return time.Duration(s.SESSION_TOKEN_TTL_HOUR) * time.Hour
}

func (s AppSetting) ResetTokenTTL() time.Duration {
	return time.Duration(s.RESET_TOKEN_TTL_MINUTE) * time.Minute
}

func (s AppSetting) ReconcileInterval() time.Duration {
	return time.Duration(s.RECONCILE_EVERY_SECOND) * time.Second
}
