package example

import "os"

func Configure() {
	os.Setenv("DB_TYPE", "postgresql")
}
