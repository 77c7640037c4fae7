package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// SetupLogging configures the logging system
func SetupLogging(logLevel string) *logrus.Logger {
	return SetupLoggingTo(logLevel, os.Stderr)
}

// SetupLoggingTo configures a logger writing to out
func SetupLoggingTo(logLevel string, out io.Writer) *logrus.Logger {
	logger := logrus.New()

	// Get log level from environment variable or parameter
	levelStr := logLevel
	if levelStr == "" {
		levelStr = os.Getenv("DATAUTIL_LOG_LEVEL")
		if levelStr == "" {
			levelStr = "info"
		}
	}

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(out)

	logger.Debugf("Logging configured with level: %s", level)
	return logger
}

// LoadEnvironmentVariables loads environment variables from an .env file.
// It returns true when a file was found and loaded.
func LoadEnvironmentVariables(envFile string, logger *logrus.Logger) bool {
	if envFile == "" {
		return false
	}

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		sampleEnvFile := envFile + ".sample"
		if _, err := os.Stat(sampleEnvFile); err == nil {
			logger.Infof("No %s file found, but %s exists. Consider copying %s to %s and updating it.",
				envFile, sampleEnvFile, sampleEnvFile, envFile)
		} else {
			logger.Debugf("No %s file found, using existing environment variables", envFile)
		}
		return false
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warningf("Error loading %s file: %v", envFile, err)
		return false
	}
	logger.Infof("Loaded environment variables from %s", envFile)

	if logger.Level == logrus.DebugLevel {
		for _, env := range os.Environ() {
			if !strings.HasPrefix(env, "DATAUTIL_") {
				continue
			}
			parts := strings.SplitN(env, "=", 2)
			if len(parts) != 2 {
				continue
			}
			if IsSecretKey(parts[0]) {
				logger.Debugf("%s=********", parts[0])
			} else {
				logger.Debugf("%s=%s", parts[0], parts[1])
			}
		}
	}

	return true
}

// IsSecretKey reports whether a field or variable name holds a secret
func IsSecretKey(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "password") || strings.Contains(k, "token") || strings.Contains(k, "secret")
}

// MaskSecret hides all but the last two characters of a secret
func MaskSecret(value string) string {
	if len(value) <= 2 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-2) + value[len(value)-2:]
}

// ValidateRequiredFields checks that every required key has a non-empty value
func ValidateRequiredFields(fields map[string]string, required []string, logger *logrus.Logger) error {
	var missing []string
	for _, key := range required {
		if strings.TrimSpace(fields[key]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		logger.Errorf("Missing required fields: %s", strings.Join(missing, ", "))
		return fmt.Errorf("please fill in all fields: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Banner returns a title framed by separator lines
func Banner(title string, width int) string {
	line := strings.Repeat("=", width)
	return "\n" + line + "\n" + title + "\n" + line
}
