package logging

import "regexp"

var (
	// Discord webhook: /api/webhooks/{id}/{token}
	webhookTokenPattern = regexp.MustCompile(`(/api/webhooks/\d+/)[A-Za-z0-9_\-.]+`)

	// URL内の認証情報
	userInfoPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error())
}

// SanitizeString masks webhook tokens and URL credentials in s.
func SanitizeString(s string) string {
	s = webhookTokenPattern.ReplaceAllString(s, "${1}****")
	s = userInfoPattern.ReplaceAllString(s, "://$1:****@")
	return s
}
