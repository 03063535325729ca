package mailer_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/mailer"
)

func TestSendEmailParamsValidate(t *testing.T) {
	t.Parallel()

	valid := mailer.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "New match",
		BodyHTML: "<p>You have a new match.</p>",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*mailer.SendEmailParams)
	}{
		{"missing recipient", func(p *mailer.SendEmailParams) { p.SendTo = "" }},
		{"malformed recipient", func(p *mailer.SendEmailParams) { p.SendTo = "not-an-email" }},
		{"missing subject", func(p *mailer.SendEmailParams) { p.Subject = "" }},
		{"missing body", func(p *mailer.SendEmailParams) { p.BodyHTML = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := valid
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), mailer.ErrInvalidParams)
		})
	}
}

func TestNewPostmarkClientConfigValidation(t *testing.T) {
	t.Parallel()

	valid := mailer.Config{
		PostmarkServerToken:  "server-token",
		PostmarkAccountToken: "account-token",
		SenderEmail:          "no-reply@example.com",
		SupportEmail:         "support@example.com",
	}

	client, err := mailer.NewPostmarkClient(valid)
	require.NoError(t, err)
	require.NotNil(t, client)

	tests := []struct {
		name   string
		mutate func(*mailer.Config)
	}{
		{"missing server token", func(c *mailer.Config) { c.PostmarkServerToken = "" }},
		{"missing account token", func(c *mailer.Config) { c.PostmarkAccountToken = "" }},
		{"missing sender", func(c *mailer.Config) { c.SenderEmail = "" }},
		{"malformed sender", func(c *mailer.Config) { c.SenderEmail = "nope" }},
		{"missing support", func(c *mailer.Config) { c.SupportEmail = "" }},
		{"malformed support", func(c *mailer.Config) { c.SupportEmail = "nope" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			_, err := mailer.NewPostmarkClient(cfg)
			assert.ErrorIs(t, err, mailer.ErrInvalidConfig)
		})
	}
}

func TestDevSenderWritesFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sender := mailer.NewDevSender(dir)

	err := sender.SendEmail(context.Background(), mailer.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "Application received",
		BodyHTML: "<p>Someone applied to your job.</p>",
		Tag:      "application_received",
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var htmlFile, jsonFile string
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".html":
			htmlFile = e.Name()
		case ".json":
			jsonFile = e.Name()
		}
	}
	require.NotEmpty(t, htmlFile)
	require.NotEmpty(t, jsonFile)
	assert.True(t, strings.Contains(htmlFile, "application_received"))

	body, err := os.ReadFile(filepath.Join(dir, htmlFile))
	require.NoError(t, err)
	assert.Contains(t, string(body), "Someone applied")
}

func TestDevSenderRejectsInvalidParams(t *testing.T) {
	t.Parallel()

	sender := mailer.NewDevSender(t.TempDir())
	err := sender.SendEmail(context.Background(), mailer.SendEmailParams{})
	assert.ErrorIs(t, err, mailer.ErrInvalidParams)
}
