package errors

import (
	"errors"
	"fmt"
	"strings"
)

// UserError represents an error with user-friendly messaging and remediation hints
type UserError struct {
	Title       string // Brief title of the error
	Message     string // Detailed error message
	Remediation string // What the user can do to fix it
	Cause       error  // Underlying error, if any
}

func (e *UserError) Error() string {
	var parts []string

	if e.Title != "" {
		parts = append(parts, e.Title)
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.Remediation != "" {
		parts = append(parts, fmt.Sprintf("💡 %s", e.Remediation))
	}

	return strings.Join(parts, "\n")
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

// Common error constructors with built-in remediation

func NewRuleSourceError(url string, err error) *UserError {
	errStr := err.Error()
	var remediation string

	var httpErr *UserError
	switch {
	case errors.As(err, &httpErr) && strings.HasPrefix(httpErr.Message, "HTTP 40"):
		remediation = "The rule sheet rejected the request. Check that it is published and shared, then run: catfill config doctor"
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "no such host") || strings.Contains(errStr, "connection refused"):
		remediation = "Check your internet connection and sheet_url. Run: catfill config doctor"
	case strings.Contains(errStr, "json") || strings.Contains(errStr, "invalid character"):
		remediation = "The sheet endpoint did not return a JSON array of rows. Check sheet_url points at the JSON export"
	default:
		remediation = "Run: catfill config doctor to diagnose the issue"
	}

	return &UserError{
		Title:       "❌ Rule Sheet Unavailable",
		Message:     fmt.Sprintf("Could not load rules from %s: %s", url, errStr),
		Remediation: remediation,
		Cause:       err,
	}
}

func NewNotConfiguredError() *UserError {
	return &UserError{
		Title:       "❌ Not Configured",
		Message:     "No rule sheet URL is configured.",
		Remediation: "Run: catfill setup, or set CATFILL_SHEET_URL",
		Cause:       nil,
	}
}

func NewAccessDeniedError(user string) *UserError {
	message := fmt.Sprintf("User '%s' is not on the authorized list.", user)
	if user == "" {
		message = "No username is configured."
	}
	return &UserError{
		Title:       "⛔ Access Denied",
		Message:     message,
		Remediation: "Set your username with: catfill config set username <name>, or ask an admin to add you to the Users sheet",
		Cause:       nil,
	}
}

func NewTaxonomyError(path string, err error) *UserError {
	return &UserError{
		Title:       "❌ Unit Taxonomy Error",
		Message:     fmt.Sprintf("Failed to load unit taxonomy %s: %v", path, err),
		Remediation: "Fix the YAML file or unset taxonomy_path to use the built-in units",
		Cause:       err,
	}
}

func NewDictionaryError(path string, err error) *UserError {
	return &UserError{
		Title:       "⚠️ Dictionary Error",
		Message:     fmt.Sprintf("Failed to load dictionary %s: %v", path, err),
		Remediation: "Check the paths under dictionaries in your config. Spelling suggestions are skipped until it loads",
		Cause:       err,
	}
}

func NewPageError(path string, err error) *UserError {
	return &UserError{
		Title:       "❌ Page Snapshot Error",
		Message:     fmt.Sprintf("Failed to read page snapshot %s: %v", path, err),
		Remediation: "Save the page as 'Label : value' lines or as a JSON object of fields and targets",
		Cause:       err,
	}
}

func NewConfigError(operation string, err error) *UserError {
	var remediation string
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "permission denied"):
		remediation = "Check file permissions. Run: chmod 644 ~/.config/catfill/config.toml"
	case strings.Contains(errStr, "no such file"):
		remediation = "Run: catfill setup to create a configuration file"
	case strings.Contains(errStr, "decode") || strings.Contains(errStr, "parse"):
		remediation = "Configuration file format is invalid. Run: catfill config doctor"
	default:
		remediation = "Run: catfill config doctor to diagnose configuration issues"
	}

	return &UserError{
		Title:       "❌ Configuration Error",
		Message:     fmt.Sprintf("Failed to %s configuration: %s", operation, errStr),
		Remediation: remediation,
		Cause:       err,
	}
}

func NewHttpError(statusCode int, body string) *UserError {
	var title, remediation string

	switch {
	case statusCode == 401:
		title = "❌ Authentication Failed"
		remediation = "The sheet requires sign-in. Publish it or use a link that allows anonymous reads"
	case statusCode == 403:
		title = "❌ Access Forbidden"
		remediation = "The sheet is not shared with this link. Ask the sheet owner to share it"
	case statusCode == 404:
		title = "❌ Resource Not Found"
		remediation = "The sheet or tab was not found. Check sheet_url and users_sheet"
	case statusCode >= 500:
		title = "❌ Server Error"
		remediation = "The sheet service is having issues. Try again later"
	default:
		title = "❌ HTTP Error"
		remediation = "An unexpected HTTP error occurred. Run: catfill --verbose to see detailed logs"
	}

	return &UserError{
		Title:       title,
		Message:     fmt.Sprintf("HTTP %d: %s", statusCode, body),
		Remediation: remediation,
		Cause:       nil,
	}
}

// Helper function to wrap existing errors with better messaging
func WrapWithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	if userErr, ok := err.(*UserError); ok {
		// Already a user error, just return it
		return userErr
	}

	switch context {
	case "config_load", "config_save":
		return NewConfigError(strings.TrimPrefix(context, "config_"), err)
	case "rule_source":
		return NewRuleSourceError("the rule sheet", err)
	default:
		// Generic wrapper that at least adds some structure
		return &UserError{
			Title:       "❌ Error",
			Message:     err.Error(),
			Remediation: "Run with --verbose flag for more details",
			Cause:       err,
		}
	}
}
