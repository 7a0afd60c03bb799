package config

import "os"

func IsDebug() bool {
	return os.Getenv("PERSONA_DEBUG") == "1"
}
