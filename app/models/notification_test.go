package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateRender(t *testing.T) {
	tpl := &NotificationTemplate{
		Subject: "New message from {{sender}}",
		Body:    "{{sender}} wrote about {{listing}}: {{preview}}",
	}

	subject, body := tpl.Render(map[string]string{
		"sender":  "Aslan",
		"listing": "Toyota Camry 2019",
		"preview": "Is it still available?",
	})

	assert.Equal(t, "New message from Aslan", subject)
	assert.Equal(t, "Aslan wrote about Toyota Camry 2019: Is it still available?", body)
}

func TestTemplateRenderMissingVariableKeepsPlaceholder(t *testing.T) {
	tpl := &NotificationTemplate{Body: "Hello {{name}}, your listing {{title}} expired"}

	_, body := tpl.Render(map[string]string{"name": "Dana"})

	assert.Equal(t, "Hello Dana, your listing {{title}} expired", body)
}

func TestDefaultNotificationSetting(t *testing.T) {
	s := DefaultNotificationSetting(7, NOTIFY_TYPE_NEW_MESSAGE, CHANNEL_PUSH)

	assert.True(t, s.IsEnabled)
	assert.Equal(t, FREQUENCY_INSTANT, s.Frequency)
	assert.Equal(t, uint(7), s.UserID)
}
