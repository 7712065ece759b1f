package checks

import (
	"os"

	"calendar-mirror/feature/gcal"
)

// CredentialsReport lists the Google credential files and their state.
type CredentialsReport struct {
	Mode    string   `json:"mode"`
	Files   []string `json:"files"`
	Missing []string `json:"missing"`
	// TokenValid is false when the cached token cannot be read.
	TokenValid bool `json:"token_valid"`
}

// CheckGoogleCredentials verifies the files needed to reach the mirror calendar.
func CheckGoogleCredentials(cfg gcal.Config) *CredentialsReport {
	if cfg.ServiceAccountFile != "" {
		report := &CredentialsReport{Mode: "service_account", Files: []string{cfg.ServiceAccountFile}, Missing: []string{}}
		if !fileExists(cfg.ServiceAccountFile) {
			report.Missing = append(report.Missing, cfg.ServiceAccountFile)
		}
		report.TokenValid = len(report.Missing) == 0
		return report
	}

	tokenPath := gcal.TokenPath(cfg)
	report := &CredentialsReport{Mode: "oauth", Files: []string{cfg.CredentialsFile, tokenPath}, Missing: []string{}}
	for _, f := range report.Files {
		if !fileExists(f) {
			report.Missing = append(report.Missing, f)
		}
	}
	if token, err := gcal.LoadToken(tokenPath); err == nil {
		report.TokenValid = token.RefreshToken != "" || token.Valid()
	}
	return report
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
