package services

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailer_Send(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "587", "user", "pass", "noreply@example.com")
	var gotAddr string
	var gotTo []string
	var gotMsg string
	m.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	body, err := RenderOTPEmail("123456", 10*time.Minute)
	require.NoError(t, err)
	require.NoError(t, m.Send(context.Background(), "a@example.com", "Your code", body))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"a@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Your code\r\n")
	assert.Contains(t, gotMsg, "123456")
	assert.Contains(t, gotMsg, "10 minutes")
}

func TestSMTPMailer_SendError(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "587", "", "", "noreply@example.com")
	m.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}
	err := m.Send(context.Background(), "a@example.com", "s", "b")
	assert.ErrorContains(t, err, "connection refused")
}
