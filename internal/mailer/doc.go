// Package mailer delivers notifications by email.
//
// Mailer reads the mail server settings on every send, so changes saved by an admin apply to the next email.
// With mail disabled the message is only logged.
package mailer
