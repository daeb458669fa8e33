// Package intent turns classified chat utterances into actions: submitting
// videos, navigating, scrolling to content sections, and answering questions
// about the current video.
package intent

// Kind is the closed set of intents the router understands. Labels the
// classification service invents beyond this set collapse to KindUnrecognized
// rather than being dispatched blind.
type Kind int

const (
	// KindUnrecognized covers unknown labels and classifier noise.
	KindUnrecognized Kind = iota
	// KindUploadVideo submits a video URL for analysis.
	KindUploadVideo
	// KindNavigate moves to another page.
	KindNavigate
	// KindScrollToSection jumps to a content section on the current page.
	KindScrollToSection
	// KindAnswerQuestion answers a question about the current video.
	KindAnswerQuestion
)

// String returns the canonical label for the intent kind.
func (k Kind) String() string {
	switch k {
	case KindUploadVideo:
		return "upload_video"
	case KindNavigate:
		return "navigate"
	case KindScrollToSection:
		return "scroll_to_section"
	case KindAnswerQuestion:
		return "ask_question"
	default:
		return "unrecognized"
	}
}

// Intent is one decoded utterance. Only the fields for its Kind are set.
type Intent struct {
	Kind Kind

	// URL is the video to submit (KindUploadVideo).
	URL string

	// Page is the navigation target (KindNavigate).
	Page string

	// Section is the scroll target (KindScrollToSection).
	Section string

	// Question is the user's question (KindAnswerQuestion).
	Question string
}

// Classification is the wire-level verdict from the classification service.
type Classification struct {
	Intent     string
	Parameters map[string]string
}

// FromClassification decodes a service classification into an Intent. The
// original utterance supplies the question text for question intents.
func FromClassification(c *Classification, utterance string) Intent {
	if c == nil {
		return Intent{Kind: KindUnrecognized}
	}

	param := func(key string) string {
		if c.Parameters == nil {
			return ""
		}
		return c.Parameters[key]
	}

	switch c.Intent {
	case "upload_video":
		url := param("url")
		if url == "" {
			url = param("video_url")
		}
		if url == "" {
			return Intent{Kind: KindUnrecognized}
		}
		return Intent{Kind: KindUploadVideo, URL: url}

	case "navigate":
		return Intent{Kind: KindNavigate, Page: param("page_name")}

	case "scroll_to_section":
		return Intent{Kind: KindScrollToSection, Section: param("section_name")}

	case "ask_question":
		return Intent{Kind: KindAnswerQuestion, Question: utterance}

	default:
		return Intent{Kind: KindUnrecognized}
	}
}
