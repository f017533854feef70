package detector

import "regexp"

// Static rule tables. They are compiled once at package init and only read
// afterwards, so a Detector can be shared between goroutines.

const (
	maxReasons         = 15
	maxURLContribution = 30
	maxSenderScore     = 25
	excessiveLinks     = 5
	urlReasonsPerLink  = 2
	maxPort            = 65535
)

var (
	headerFromPattern    = regexp.MustCompile(`(?im)^from:(.*)$`)
	headerSubjectPattern = regexp.MustCompile(`(?im)^subject:(.*)$`)
	headerToPattern      = regexp.MustCompile(`(?im)^to:(.*)$`)

	urlPattern = regexp.MustCompile("https?://[^\\s<>\"'{}|\\\\^`\\[\\]]+")

	ipHostPattern = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)

	typosquatPattern  = regexp.MustCompile(`[01]o|o[01]`)
	brandMimicPattern = regexp.MustCompile(`(?i)` +
		`paypa1|paypai|payp4l|pay-pal|paypall|` +
		`amaz0n|arnazon|amazom|amazn|` +
		`g00gle|go0gle|g0ogle|googel|gooogle|` +
		`micr0soft|rnicrosoft|microsft|m1crosoft|` +
		`app1e|appl3|apple-id-|` +
		`faceb00k|facebok|face-book|` +
		`secure-?bank|bank-?(?:secure|verify|login|update)|verify-?bank|onlinebank1ng`)

	attachmentLinePattern = regexp.MustCompile(`(?i)^\s*(?:attachments?|attached|filename|files?)[:\s]\s*(.*)$`)
	officeSuffixPattern   = regexp.MustCompile(`(?i)\.(?:doc|xls|pdf|ppt)[xm]?$`)

	urgencyPattern = regexp.MustCompile(`(?i)verify|urgent|suspend|reset|immediately|deadline|account locked|otp|invoice|payment|confirm|authenticate|action required|validate`)

	exclamationPattern     = regexp.MustCompile(`!{3,}`)
	subjectCallToAction    = regexp.MustCompile(`(?i)verify|confirm|suspend|locked|unlock|password|security alert|unusual activity|sign[ -]?in|log[ -]?in|update (?:your )?(?:account|information|payment|details)`)
	automatedSenderPattern = regexp.MustCompile(`(?i)noreply|no-reply|auto|notification`)
	genericGreetingPattern = regexp.MustCompile(`(?im)^(?:dear user|hello user|dear customer|dear sir|dear madam)`)
	suspiciousTagPattern   = regexp.MustCompile(`(?i)<(?:script|iframe|object|embed)`)
	bodyCallToAction       = regexp.MustCompile(`(?i)verify.*account|confirm.*identity|update.*information|click.*immediately|act.*now`)

	// used only when the HTML parse is unavailable
	anchorTextFallback = regexp.MustCompile(`(?is)<a\s[^>]*href=[^>]*>([^<]*)</a>`)
)

// shorteners are matched in order; the first one contained in the URL wins
var shorteners = []string{
	"bit.ly",
	"tinyurl.com",
	"goo.gl",
	"is.gd",
	"rb.gy",
	"ow.ly",
	"buff.ly",
	"short.link",
	"t.co",
}

var riskyExtensions = []string{
	".exe", ".zip", ".rar", ".bat", ".cmd", ".com", ".scr", ".vbs", ".js", ".jar", ".msi",
}

var misspellings = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\brecieve\b`),
	regexp.MustCompile(`(?i)\boccured\b`),
	regexp.MustCompile(`(?i)\bseperate\b`),
	regexp.MustCompile(`(?i)\badress\b`),
	regexp.MustCompile(`(?i)\bbuisness\b`),
}

// DefaultBrandDomains are the legitimate domains the sender lookalike check compares against
var DefaultBrandDomains = []string{
	"paypal.com",
	"google.com",
	"apple.com",
	"microsoft.com",
	"amazon.com",
	"facebook.com",
	"bank.com",
	"wellsfargo.com",
	"chase.com",
}

// Reason texts shared between rules and tests
const (
	ReasonTyposquat       = "possible typosquatting (0/1/O confusion)"
	ReasonBrandMimic      = "domain mimics known brand"
	ReasonHyphens         = "multiple hyphens in domain"
	ReasonInvalidURL      = "invalid URL format"
	ReasonURLParse        = "URL parsing error"
	ReasonIPHost          = "URL uses IP address instead of domain"
	ReasonPlainHTTP       = "non-HTTPS URL (no encryption)"
	ReasonSubdomains      = "too many subdomains"
	ReasonShortSubject    = "suspiciously short subject"
	ReasonExclamation     = "excessive exclamation marks in subject"
	ReasonSubjectKeywords = "phishing-related keywords in subject"
	ReasonAutomatedSender = "automated sender address"
	ReasonGreeting        = "generic greeting (not personalized)"
	ReasonHTMLLink        = "HTML link (potential mismatch between display and target)"
	ReasonSuspiciousTags  = "suspicious HTML tags detected (script/iframe/object/embed)"
	ReasonCallToAction    = "call-to-action phrases common in phishing"
)
