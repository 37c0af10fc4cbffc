// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// AcceptanceEmailData holds data for the application-accepted email.
type AcceptanceEmailData struct {
	SiteName     string
	UserName     string
	ProjectTitle string
	BonusPoints  int
}

// BuildAcceptanceEmail creates the email sent when a volunteer's project
// application is accepted.
func BuildAcceptanceEmail(data AcceptanceEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("You've been accepted to %s", data.ProjectTitle),
		TextBody: buildAcceptanceText(data),
		HTMLBody: buildNotificationHTML(data.SiteName, "Application accepted",
			fmt.Sprintf("Hi %s, your application to <strong>%s</strong> was accepted. %d bonus points have been added to your account.",
				template.HTMLEscapeString(data.UserName),
				template.HTMLEscapeString(data.ProjectTitle),
				data.BonusPoints)),
	}
}

func buildAcceptanceText(data AcceptanceEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Hi %s,\n\n", data.UserName))
	buf.WriteString(fmt.Sprintf("Your application to %q was accepted.\n", data.ProjectTitle))
	buf.WriteString(fmt.Sprintf("%d bonus points have been added to your account.\n\n", data.BonusPoints))
	buf.WriteString(fmt.Sprintf("— The %s team\n", data.SiteName))
	return buf.String()
}

// TaskCompletedEmailData holds data for the task-completed email.
type TaskCompletedEmailData struct {
	SiteName  string
	UserName  string
	TaskTitle string
	Points    int
	NewBadges []string
}

// BuildTaskCompletedEmail creates the email sent to the assignee when a
// task completes and points are credited.
func BuildTaskCompletedEmail(data TaskCompletedEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("Task completed: %s", data.TaskTitle),
		TextBody: buildTaskCompletedText(data),
		HTMLBody: buildNotificationHTML(data.SiteName, "Task completed",
			fmt.Sprintf("Nice work, %s! You earned %d points for completing <strong>%s</strong>.",
				template.HTMLEscapeString(data.UserName),
				data.Points,
				template.HTMLEscapeString(data.TaskTitle))),
	}
}

func buildTaskCompletedText(data TaskCompletedEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Nice work, %s!\n\n", data.UserName))
	buf.WriteString(fmt.Sprintf("You earned %d points for completing %q.\n", data.Points, data.TaskTitle))
	if len(data.NewBadges) > 0 {
		buf.WriteString("\nNew badges:\n")
		for _, b := range data.NewBadges {
			buf.WriteString("  - " + b + "\n")
		}
	}
	buf.WriteString(fmt.Sprintf("\n— The %s team\n", data.SiteName))
	return buf.String()
}

// VerificationEmailData holds data for the NGO verification decision email.
type VerificationEmailData struct {
	SiteName  string
	NGOName   string
	Verified  bool
	Reference string
	Note      string
}

// BuildVerificationEmail creates the email sent to an NGO owner when an
// admin decides their verification.
func BuildVerificationEmail(data VerificationEmailData) Email {
	if data.Verified {
		return Email{
			Subject:  fmt.Sprintf("%s is now verified", data.NGOName),
			TextBody: fmt.Sprintf("Congratulations! %s has been verified.\nReference: %s\n\n— The %s team\n", data.NGOName, data.Reference, data.SiteName),
			HTMLBody: buildNotificationHTML(data.SiteName, "Verification approved",
				fmt.Sprintf("Congratulations! <strong>%s</strong> has been verified. Reference: %s",
					template.HTMLEscapeString(data.NGOName),
					template.HTMLEscapeString(data.Reference))),
		}
	}
	return Email{
		Subject:  fmt.Sprintf("Verification decision for %s", data.NGOName),
		TextBody: fmt.Sprintf("The verification request for %s was not approved.\n%s\n\n— The %s team\n", data.NGOName, data.Note, data.SiteName),
		HTMLBody: buildNotificationHTML(data.SiteName, "Verification decision",
			fmt.Sprintf("The verification request for <strong>%s</strong> was not approved. %s",
				template.HTMLEscapeString(data.NGOName),
				template.HTMLEscapeString(data.Note))),
	}
}

// notificationHTMLTemplate keeps all notification emails on one simple
// layout.
const notificationHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #059669;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <h2 style="margin: 0 0 16px; font-size: 18px; color: #1f2937;">{{.Title}}</h2>
              <p style="margin: 0; font-size: 16px; color: #374151; line-height: 1.5;">{{.Body}}</p>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                You are receiving this because you have an account on {{.SiteName}}.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

func buildNotificationHTML(siteName, title, htmlBody string) string {
	tmpl := template.Must(template.New("notification").Parse(notificationHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, struct {
		SiteName string
		Title    string
		Body     template.HTML
	}{SiteName: siteName, Title: title, Body: template.HTML(htmlBody)})
	return buf.String()
}
