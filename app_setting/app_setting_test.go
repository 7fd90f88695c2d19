package app_setting

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppSettingDefaults(t *testing.T) {
	s, err := ParseAppSetting("")
	require.Nil(t, err)
	assert.Equal(t, Default(), s)
	assert.Equal(t, 365*24*time.Hour, s.SessionTokenTTL())
	assert.Equal(t, 15*time.Minute, s.ResetTokenTTL())
}

func TestParseAppSettingOverride(t *testing.T) {
	dir, err := ioutil.TempDir("", "app_setting")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "setting.yaml")
	require.Nil(t, ioutil.WriteFile(path, []byte("BCRYPT_COST: 4\nMAX_COMMENT_LENGTH: 20\n"), 0644))

	s, err := ParseAppSetting(path)
	require.Nil(t, err)
	assert.Equal(t, 4, s.BCRYPT_COST)
	assert.Equal(t, 20, s.MAX_COMMENT_LENGTH)
	// untouched fields keep their default
	assert.Equal(t, int64(15), s.RESET_TOKEN_TTL_MINUTE)
}

func TestParseAppSettingMissingFile(t *testing.T) {
	_, err := ParseAppSetting("/does/not/exist.yaml")
	assert.NotNil(t, err)
}
