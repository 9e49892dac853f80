package example

import (
	"os"
	"testing"
)

func TestEnv(t *testing.T) {
	os.Setenv("DB_TYPE", "mongodb") // want `os.Setenv is forbidden in test files`
	t.Setenv("DB_TYPE", "mongodb")  // want `t.Setenv is forbidden in test files`

	_ = os.Getenv("DB_TYPE")
}
