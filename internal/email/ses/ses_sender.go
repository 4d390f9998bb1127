package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"bookingflow/internal/domain"
	"bookingflow/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	portalURL   string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName, portalURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		portalURL:   portalURL,
	}, nil
}

func (s *sesSender) SendJobCompleted(ctx context.Context, toEmail string, job *domain.UploadJob, summary *domain.JobSummary) error {
	reviewURL := fmt.Sprintf("%s/documents/%s", s.portalURL, job.DocumentID)

	subject := fmt.Sprintf("Booking extraction finished: %s", job.OriginalName)
	htmlBody := buildCompletedHTML(job.OriginalName, reviewURL, summary)
	textBody := fmt.Sprintf(
		"Your upload %s has been processed.\n\nPages extracted: %d of %d\nPages failed: %d\n\nReview the results here:\n%s\n\nBookingFlow Team",
		job.OriginalName, summary.PagesSucceeded, summary.PagesTotal, summary.PagesFailed, reviewURL)

	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendJobFailed(ctx context.Context, toEmail string, job *domain.UploadJob, reason string) error {
	subject := fmt.Sprintf("Booking extraction failed: %s", job.OriginalName)
	htmlBody := buildFailedHTML(job.OriginalName, reason)
	textBody := fmt.Sprintf(
		"Your upload %s could not be processed.\n\nReason: %s\n\nPlease check the file and try again.\n\nBookingFlow Team",
		job.OriginalName, reason)

	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildCompletedHTML(fileName, reviewURL string, summary *domain.JobSummary) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Your booking document is ready for review</h2>
  <p>We finished processing <strong>%s</strong>.</p>
  <p>Pages extracted: %d of %d<br>Pages failed: %d</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Review Bookings</a>
  </p>
  <p>Or copy and paste this link into your browser:</p>
  <p style="word-break: break-all; color: #666;">%s</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">BookingFlow - Shipping Document Processing</p>
</body>
</html>`, fileName, summary.PagesSucceeded, summary.PagesTotal, summary.PagesFailed, reviewURL, reviewURL)
}

func buildFailedHTML(fileName, reason string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">We could not process your upload</h2>
  <p><strong>%s</strong> could not be processed.</p>
  <p style="color: #991B1B;">%s</p>
  <p>Please check the file and try uploading it again.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">BookingFlow - Shipping Document Processing</p>
</body>
</html>`, fileName, reason)
}
