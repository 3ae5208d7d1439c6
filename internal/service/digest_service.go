package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"readalong/internal/models"
)

// DigestService emails teachers a summary of recent practice via
// Amazon SES.
type DigestService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	recipient string
	enabled   bool

	studentService *StudentService
}

// NewDigestService creates a new digest service. If fromEmail or the
// recipient is empty the service is created disabled and every send
// becomes a logged no-op.
func NewDigestService(awsRegion, fromEmail, fromName, recipient string, studentService *StudentService) (*DigestService, error) {
	if fromEmail == "" || recipient == "" {
		log.Println("Digest emails disabled: SES_FROM_EMAIL or DIGEST_RECIPIENT not configured")
		return &DigestService{enabled: false, studentService: studentService}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)
	log.Printf("Digest emails enabled: from=%s, to=%s, region=%s", fromEmail, recipient, awsRegion)

	return &DigestService{
		client:         client,
		fromEmail:      fromEmail,
		fromName:       fromName,
		recipient:      recipient,
		enabled:        true,
		studentService: studentService,
	}, nil
}

// IsEnabled returns whether digest sending is configured.
func (s *DigestService) IsEnabled() bool {
	return s.enabled
}

// SendClassDigest emails a summary of the class's current standing:
// who practiced in the window and who has gone quiet.
func (s *DigestService) SendClassDigest(ctx context.Context, classID string, window time.Duration) error {
	if !s.enabled {
		log.Printf("Skipping digest send (service disabled): class %s", classID)
		return nil
	}

	records, err := s.studentService.ListStudents(classID)
	if err != nil {
		return fmt.Errorf("failed to load students for digest: %w", err)
	}

	cutoff := time.Now().Add(-window)
	var active, idle []models.StudentRecord
	for _, rec := range records {
		if rec.LastPractice.After(cutoff) {
			active = append(active, rec)
		} else {
			idle = append(idle, rec)
		}
	}

	subject := fmt.Sprintf("Reading practice digest: %d of %d students practiced", len(active), len(records))
	htmlBody, textBody := buildDigestBodies(active, idle, window)

	return s.sendEmail(ctx, subject, htmlBody, textBody)
}

// Run sends a digest at the given interval until the context ends.
func (s *DigestService) Run(ctx context.Context, classID string, interval time.Duration) {
	if !s.enabled {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SendClassDigest(ctx, classID, interval); err != nil {
				log.Printf("Digest send failed: %v", err)
			}
		}
	}
}

func buildDigestBodies(active, idle []models.StudentRecord, window time.Duration) (string, string) {
	days := int(window.Hours() / 24)
	if days < 1 {
		days = 1
	}

	var activeRows, activeLines strings.Builder
	for _, rec := range active {
		fmt.Fprintf(&activeRows, "<tr><td>%s</td><td>%d%%</td><td>%d</td><td>%s wpm</td></tr>\n",
			rec.Name, rec.AverageScore, rec.CompletedLessons, rec.ReadingSpeed.String())
		fmt.Fprintf(&activeLines, "- %s: average %d%%, %d lessons, %s wpm\n",
			rec.Name, rec.AverageScore, rec.CompletedLessons, rec.ReadingSpeed.String())
	}

	var idleNames []string
	for _, rec := range idle {
		idleNames = append(idleNames, rec.Name)
	}
	idleList := strings.Join(idleNames, ", ")
	if idleList == "" {
		idleList = "nobody, everyone practiced!"
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		table { width: 100%%; border-collapse: collapse; }
		th, td { text-align: left; padding: 6px; border-bottom: 1px solid #ddd; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Reading Practice Digest</h1>
		</div>
		<div class="content">
			<p>Here is how your class did over the last %d day(s).</p>
			<h3>Practiced (%d)</h3>
			<table>
				<tr><th>Student</th><th>Average</th><th>Lessons</th><th>Speed</th></tr>
				%s
			</table>
			<h3>Still waiting on</h3>
			<p>%s</p>
		</div>
	</div>
</body>
</html>
`, days, len(active), activeRows.String(), idleList)

	textBody := fmt.Sprintf(`Reading Practice Digest

Here is how your class did over the last %d day(s).

Practiced (%d):
%s
Still waiting on: %s
`, days, len(active), activeLines.String(), idleList)

	return htmlBody, textBody
}

// sendEmail sends an email using Amazon SES.
func (s *DigestService) sendEmail(ctx context.Context, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{s.recipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send digest to %s: %w", s.recipient, err)
	}
	if result.MessageId != nil {
		log.Printf("Digest sent: to=%s, message=%s", s.recipient, *result.MessageId)
	}
	return nil
}
