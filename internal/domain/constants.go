package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
	// ReportFilePermissions is used for generated reports and exports (rw-r--r--)
	ReportFilePermissions = 0o644
)

// Timeout and duration constants
const (
	// DefaultHTTPClientTimeout is the timeout for the generic HTTP backend
	DefaultHTTPClientTimeout = 120 * time.Second
)

// Analysis constants
const (
	// MinAnalysisDepth is the shallowest analysis ("quick fix")
	MinAnalysisDepth = 1
	// MaxAnalysisDepth is the deepest analysis
	MaxAnalysisDepth = 5
	// DefaultAnalysisDepth is used when nothing else is configured
	DefaultAnalysisDepth = 3
	// AnalysisErrorMarker prefixes results recorded for failed service calls
	AnalysisErrorMarker = "❌ **Analysis Error:**"
	// ImageInputPlaceholder is recorded as the input of image reports
	ImageInputPlaceholder = "Image upload"
	// FileInputPrefix prefixes the file name recorded for file reports
	FileInputPrefix = "File: "
	// MaxImageBytes bounds screenshot uploads
	MaxImageBytes = 20 << 20
	// MaxSourceFileBytes bounds source file uploads
	MaxSourceFileBytes = 1 << 20
)

// History constants
const (
	// DefaultSatisfactionRate is the static success rate shown in summaries
	DefaultSatisfactionRate = 95.0
	// RecentHistoryLimit is how many records the recent view shows
	RecentHistoryLimit = 5
	// MaxErrorPatterns caps the error-token ranking
	MaxErrorPatterns = 10
)

// Report constants
const (
	// ReportFilePrefix starts every report filename
	ReportFilePrefix = "bug_report_"
	// ReportFileExtension ends every report filename
	ReportFileExtension = ".md"
	// ReportFingerprintLength is the number of hex characters in the fingerprint
	ReportFingerprintLength = 8
	// ReportInputLimit truncates record inputs in reports (characters)
	ReportInputLimit = 500
	// ReportSummaryLimit truncates solution summaries in reports (characters)
	ReportSummaryLimit = 300
	// ReportTimestampLayout formats the report generation time
	ReportTimestampLayout = "2006-01-02 15:04:05"
)

// Model configuration constants
const (
	// DefaultMaxTokens is the default maximum number of output tokens
	DefaultMaxTokens = 4096
	// DefaultGeminiModel matches the model the service was built around
	DefaultGeminiModel = "gemini-2.0-flash"
	// DefaultAPIKeyEnvVar holds the Gemini credential
	DefaultAPIKeyEnvVar = "GOOGLE_API_KEY"
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
	// DateFormat renders calendar days in the timeline
	DateFormat = "2006-01-02"
)

// ErrorTokenKeywords select which whitespace tokens count as error patterns.
var ErrorTokenKeywords = []string{"error", "exception", "failed", "undefined", "null"}

// AllowedSourceExtensions are the file extensions accepted for file reports.
var AllowedSourceExtensions = []string{".py", ".js", ".java", ".cpp", ".c", ".cs", ".go", ".rs", ".php", ".rb", ".html", ".css"}

// AllowedImageExtensions are the screenshot formats accepted for image reports.
var AllowedImageExtensions = []string{".png", ".jpg", ".jpeg"}
