package helpers

import (
	"fmt"
	"html"
)

// buildLayout: общий каркас письма Mahattati.
func buildLayout(title, body, footer string) string {
	return fmt.Sprintf(`
<html>
  <body style="font-family:Arial,sans-serif;background:#f7f7f7;padding:0;margin:0;">
    <table width="100%%" bgcolor="#f7f7f7" cellpadding="0" cellspacing="0" style="padding:30px 0;">
      <tr>
        <td align="center">
          <table width="600" bgcolor="#fff" cellpadding="24" cellspacing="0" style="border-radius:10px;box-shadow:0 2px 8px #eee;">
            <tr>
              <td>
                <h2 style="color:#333;margin-top:0;">%s</h2>
                <div style="font-size:16px;color:#222;">%s</div>
                <hr style="border:none;border-top:1px solid #eee;margin:32px 0 12px 0;">
                <p style="font-size:12px;color:#999;margin:0;">%s</p>
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>
`, title, body, footer)
}

func button(link, label, color string) string {
	return fmt.Sprintf(`
      <p><a href="%s" style="display:inline-block;padding:12px 24px;background:%s;color:#fff;text-decoration:none;border-radius:5px;margin:20px 0;">%s</a></p>
      <p>Or copy and paste this URL into your browser:</p>
      <p style="color:#666;word-break:break-all;">%s</p>`, link, color, label, link)
}

func BuildVerificationHTML(name, link string) string {
	body := "<p>Thank you for registering. Please verify your email address by clicking the link below:</p>" +
		button(link, "Verify Email", "#007bff")
	return buildLayout(
		fmt.Sprintf("Welcome to Mahattati, %s!", html.EscapeString(name)),
		body,
		"This link will expire in 24 hours.",
	)
}

func BuildPasswordResetHTML(name, link string) string {
	body := fmt.Sprintf("<p>Hello %s,</p><p>You requested to reset your password. Click the link below to reset it:</p>", html.EscapeString(name)) +
		button(link, "Reset Password", "#dc3545")
	return buildLayout(
		"Password Reset Request",
		body,
		"This link will expire in 1 hour. If you didn't request this, please ignore this email.",
	)
}

// BuildNotificationHTML: письмо-дубль внутреннего уведомления.
func BuildNotificationHTML(title, message, link string) string {
	body := fmt.Sprintf("<p>%s</p>", html.EscapeString(message))
	if link != "" {
		body += fmt.Sprintf(`<p><a href="%s" style="display:inline-block;padding:12px 24px;background:#007bff;color:#fff;text-decoration:none;border-radius:5px;">View Details</a></p>`, link)
	}
	return buildLayout(html.EscapeString(title), body, "Mahattati, the fuel station advertising platform.")
}
