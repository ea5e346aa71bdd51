package service

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(host string, port int, username, password, from string) EmailService {
	return &emailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *emailService) SendInvitationLink(ctx context.Context, email, projectName, inviteURL string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	if projectName == "" {
		m.SetHeader("Subject", "You have been invited to a project")
	} else {
		m.SetHeader("Subject", fmt.Sprintf("Invitation to join %s", projectName))
	}

	body := fmt.Sprintf("Hello,\n\nYou have been invited to join the project %s.\n\nFollow this link to join:\n\n%s\n\nBest regards,\nThe Teamspace Team", projectName, inviteURL)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}
	return nil
}
