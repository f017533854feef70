package detector

import (
	"fmt"
	"strings"

	"github.com/cypheral1/phish-shiled/internal/core"
)

// ExtractAttachments returns the filenames named on lines such as
// "Attachment: invoice.exe" or "Filename: report.pdf"
func ExtractAttachments(text string) []string {
	names := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		m := attachmentLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if name := strings.TrimSpace(m[1]); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ClassifyAttachment classifies a filename by its extension
func ClassifyAttachment(name string) core.AttachmentClass {
	lower := strings.ToLower(name)
	for _, ext := range riskyExtensions {
		if strings.HasSuffix(lower, ext) {
			return core.AttachmentRisky
		}
	}
	if officeSuffixPattern.MatchString(lower) {
		return core.AttachmentOffice
	}
	return core.AttachmentBenign
}

func classifyAttachments(names []string) []core.AttachmentFinding {
	findings := make([]core.AttachmentFinding, 0, len(names))
	for _, name := range names {
		findings = append(findings, core.AttachmentFinding{
			Filename: name,
			Class:    ClassifyAttachment(name),
		})
	}
	return findings
}

// scoreAttachments scores findings in order. Office documents only count
// until the first risky attachment has been seen.
func scoreAttachments(findings []core.AttachmentFinding) signal {
	var s signal
	risky := 0
	for _, f := range findings {
		switch f.Class {
		case core.AttachmentRisky:
			risky++
			s.add(30, fmt.Sprintf("risky attachment: %s", f.Filename))
		case core.AttachmentOffice:
			if risky == 0 {
				s.add(5, fmt.Sprintf("office document attachment: %s", f.Filename))
			}
		}
	}
	return s
}

func countRisky(findings []core.AttachmentFinding) int {
	n := 0
	for _, f := range findings {
		if f.Class == core.AttachmentRisky {
			n++
		}
	}
	return n
}
