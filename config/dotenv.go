package config

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// loadDotEnv is best effort; deployments usually set the environment directly.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("No .env file loaded")
	}
}
