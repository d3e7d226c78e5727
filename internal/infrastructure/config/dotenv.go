package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// dotEnvName is the file searched for from the working directory upwards.
const dotEnvName = ".env"

// LoadDotEnv loads the first .env file found from the current working
// directory up to the filesystem root. Variables already present in the
// environment are not overwritten.
//
// Test binaries skip the lookup unless EARPANEL_TEST_DOTENV=1, so a
// developer-local .env never leaks into unit tests.
func LoadDotEnv() error {
	if runningUnderGoTest() && os.Getenv("EARPANEL_TEST_DOTENV") != "1" {
		return nil
	}

	path, err := findDotEnv()
	if err != nil || path == "" {
		return err
	}
	return godotenv.Load(path)
}

func findDotEnv() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, dotEnvName)
		info, statErr := os.Stat(candidate)
		if statErr == nil && !info.IsDir() {
			return candidate, nil
		}
		if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
			return "", statErr
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func runningUnderGoTest() bool {
	if strings.HasSuffix(os.Args[0], ".test") {
		return true
	}
	for _, arg := range os.Args[1:] {
		if strings.HasPrefix(arg, "-test.") {
			return true
		}
	}
	return false
}
