package config

import (
	"os"
	"strconv"

	sharedConfig "orghub-backend/shared/config"
)

type NotificationConfig struct {
	*sharedConfig.Config

	EmailConfig EmailConfig
}

type EmailConfig struct {
	EnableEmailNotification bool
	Templates               EmailTemplates
}

type EmailTemplates struct {
	InvitationTemplate string
}

var notificationConfig *NotificationConfig

func LoadNotificationConfig() *NotificationConfig {
	if notificationConfig != nil {
		return notificationConfig
	}

	baseConfig := sharedConfig.GetConfig()

	notificationConfig = &NotificationConfig{
		Config: baseConfig,
		EmailConfig: EmailConfig{
			EnableEmailNotification: getEnvAsBool("EMAIL_NOTIFICATION_ENABLE", true),
			Templates: EmailTemplates{
				InvitationTemplate: getEnv("EMAIL_TEMPLATE_INVITATION", "organization_invitation.html"),
			},
		},
	}

	return notificationConfig
}

func GetNotificationConfig() *NotificationConfig {
	if notificationConfig == nil {
		return LoadNotificationConfig()
	}
	return notificationConfig
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
