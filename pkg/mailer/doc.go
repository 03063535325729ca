// Package mailer provides transactional email delivery behind the
// EmailSender interface. The Postmark client is the production
// implementation; DevSender writes emails to disk for local development.
//
// In this service email is the offline fallback channel for urgent
// notifications: when a recipient has no live connections, the sender
// hands the notification to an EmailSender instead of dropping the push.
package mailer
