package email

import (
	"context"
	"errors"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/adzap-tech/adzap-backend/internal/adzap_errors"
)

type EmailPurpose string
type EmailBodyType string

const (
	KeyEmailSender              = "SENDER_EMAIL"
	KeyEmailSenderPassword      = "SENDER_EMAIL_PASSWORD"
	KeyEmailSMTPServer          = "smtp.gmail.com"
	KeyEmailSMTPPort            = 587

	KeyEmailBodyPlain EmailBodyType = "text/plain"
	KeyEmailBodyHTML  EmailBodyType = "text/html"

	PurposeContactNotification EmailPurpose = "contact_notification"
	PurposeRegistrationReceipt EmailPurpose = "registration_receipt"

	defaultEmailChannelCapacity = 100
)

type EmailRequest struct {
	To       []string
	Subject  string
	Body     string
	BodyType EmailBodyType
	Purpose  EmailPurpose
}

type emailJob struct {
	EmailRequest
	from string
}

var emailChan = make(chan emailJob, defaultEmailChannelCapacity)

// StartEmailWorkers launches n background senders draining the shared
// channel. Delivery is best effort, a failed send is logged and dropped.
func StartEmailWorkers(n int) {
	password := os.Getenv(KeyEmailSenderPassword)
	sender := os.Getenv(KeyEmailSender)
	if sender == "" {
		log.Warn("sender email not configured. outbound email is disabled")
	}
	for i := range n {
		go worker(i+1, sender, password)
	}
}

func worker(id int, sender, password string) {
	workerLogger := log.WithField("email_worker", id)
	dialer := gomail.NewDialer(KeyEmailSMTPServer, KeyEmailSMTPPort, sender, password)
	for job := range emailChan {
		msg := gomail.NewMessage()
		msg.SetHeader("From", job.from)
		msg.SetHeader("To", job.To...)
		msg.SetHeader("Subject", job.Subject)
		msg.SetBody(string(job.BodyType), job.Body)
		if err := dialer.DialAndSend(msg); err != nil {
			workerLogger.Errorf("cannot send %s mail to %v, %v", job.Purpose, job.To, err)
			continue
		}
		workerLogger.WithFields(log.Fields{
			"purpose": job.Purpose,
			"to":      job.To,
		}).Info("sent mail")
	}
}

// NewMail queues a mail for the workers. Callers treat failure as
// non-fatal, the registration and contact flows never block on delivery.
func NewMail(
	ctx context.Context,
	subject string,
	body string,
	bodyType EmailBodyType,
	purpose EmailPurpose,
	to ...string,
) error {
	fromMail := os.Getenv(KeyEmailSender)
	if fromMail == "" {
		log.Debug("sender email is not configured")
		return adzap_errors.ErrEmailServiceStopped
	}
	job := emailJob{
		from: fromMail,
		EmailRequest: EmailRequest{
			To:       to,
			Subject:  subject,
			Body:     body,
			BodyType: bodyType,
			Purpose:  purpose,
		},
	}
	// when all the workers are dead, it shouldn't block indefinetely
	select {
	case <-ctx.Done():
		log.Errorf("email job cancelled: %v", ctx.Err())
		return errors.Join(adzap_errors.ErrEmailServiceStopped, ctx.Err())
	case emailChan <- job:
		return nil
	}
}
