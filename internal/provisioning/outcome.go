// Package provisioning runs the login callback pipeline: provider error
// classification, the email domain gate, and lazy creation of the member
// profile derived from the university email address.
package provisioning

import "strings"

// Outcome is the machine-readable result of a login callback. Every value
// except OutcomeSuccess is sent to the error page as errorCode.
type Outcome string

// Outcome values.
const (
	OutcomeSuccess             Outcome = "SUCCESS"
	OutcomeInvalidEmailDomain  Outcome = "INVALID_EMAIL_DOMAIN"
	OutcomeProfileCheckFailed  Outcome = "PROFILE_CHECK_FAILED"
	OutcomeEmailParseError     Outcome = "EMAIL_PARSE_ERROR"
	OutcomeYearParseError      Outcome = "YEAR_PARSE_ERROR"
	OutcomeProfileCreateFailed Outcome = "PROFILE_CREATE_FAILED"
	OutcomeProfileSetupError   Outcome = "PROFILE_SETUP_ERROR"
	OutcomeAuthCodeError       Outcome = "AUTH_CODE_ERROR"
	OutcomeOAuthError          Outcome = "OAUTH_ERROR"
)

// domainRejectionMarker is what the hosted identity backend puts in the
// error description when its signup trigger rejects a non-university email.
const domainRejectionMarker = "Database error saving new user"

// ErrorPage is the human-readable content shown for an outcome.
type ErrorPage struct {
	Code    string
	Title   string
	Message string
}

var fallbackPage = ErrorPage{
	Title: "Authentication Error",
	Message: "There was an error with the authentication process. Please try signing in again. " +
		"If the problem persists, contact support.",
}

var errorPages = map[Outcome]ErrorPage{
	OutcomeInvalidEmailDomain: {
		Title: "Invalid Email Domain",
		Message: "Sorry, only email addresses from the '@sastra.ac.in' domain are permitted. " +
			"Please use your SASTRA University email address to sign up or log in.",
	},
	OutcomeProfileCheckFailed: {
		Title:   "Profile Check Failed",
		Message: "We could not verify your profile right now. Please try signing in again in a few minutes.",
	},
	OutcomeEmailParseError: {
		Title: "Unrecognized Email Format",
		Message: "We could not read your registration number from your email address. " +
			"Please sign in with your SASTRA student email.",
	},
	OutcomeYearParseError: {
		Title:   "Unrecognized Registration Number",
		Message: "We could not determine your year of joining from your registration number. Please contact the club.",
	},
	OutcomeProfileCreateFailed: {
		Title:   "Profile Creation Failed",
		Message: "Your account was verified but we could not create your profile. Please try signing in again.",
	},
	OutcomeProfileSetupError: {
		Title:   "Profile Setup Error",
		Message: "Something went wrong while setting up your profile. Please try again later or contact support.",
	},
	OutcomeAuthCodeError: {
		Title:   "Sign-in Link Expired",
		Message: "The sign-in code was missing, expired or already used. Please start the sign-in again.",
	},
	OutcomeOAuthError: {
		Title:   "Sign-in Failed",
		Message: "The sign-in provider reported an error. Please try signing in again.",
	},
}

// PageFor returns the error page content for a raw errorCode value. Unknown
// or empty codes get the generic page; the code shows as "N/A" when empty.
func PageFor(code string) ErrorPage {
	page, ok := errorPages[Outcome(code)]
	if !ok {
		page = fallbackPage
	}
	page.Code = code
	if page.Code == "" {
		page.Code = "N/A"
	}
	return page
}

// ClassifyProviderError maps the error parameters the provider sent back
// on the callback to an outcome.
func ClassifyProviderError(errParam, description, errorCode string) Outcome {
	if strings.EqualFold(errorCode, "invalid_email_domain") {
		return OutcomeInvalidEmailDomain
	}
	if errParam == "server_error" && strings.Contains(description, domainRejectionMarker) {
		return OutcomeInvalidEmailDomain
	}
	return OutcomeOAuthError
}
