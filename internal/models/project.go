package models

// Status enumerates the lifecycle of a project's pipeline run.
type Status int

const (
	StatusAvailable Status = iota
	StatusDownloading
	StatusExtracting
	StatusValidating
	StatusRunning
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusDownloading:
		return "downloading"
	case StatusExtracting:
		return "extracting"
	case StatusValidating:
		return "validating"
	case StatusRunning:
		return "running"
	case StatusError:
		return "error"
	default:
		return ""
	}
}

// Terminal reports whether a run in this status has finished.
// Terminal statuses stay put until a new run resets the project.
func (s Status) Terminal() bool {
	return s == StatusRunning || s == StatusError
}

// CanTransition reports whether the fixed status sequence permits moving to
// the given status. Error is reachable from every non-terminal status, and a
// terminal status only re-enters the sequence at downloading (a re-run).
func (s Status) CanTransition(to Status) bool {
	if to == StatusError {
		return !s.Terminal()
	}

	switch s {
	case StatusAvailable:
		return to == StatusDownloading
	case StatusDownloading:
		return to == StatusExtracting
	case StatusExtracting:
		return to == StatusValidating
	case StatusValidating:
		return to == StatusRunning
	case StatusRunning, StatusError:
		return to == StatusDownloading
	default:
		return false
	}
}

// LogKind tags a transcript line as informational or an error.
type LogKind int

const (
	LogInfo LogKind = iota
	LogError
)

// LogEntry is one line in a project's run transcript. Consumers branch on
// Kind instead of parsing sigils out of the text.
type LogEntry struct {
	Kind LogKind
	Text string
}

// ContentKind discriminates text entries from binary entries in a decoded archive.
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentBinary
)

// VirtualFile is a single decoded archive entry. Path is slash-separated and
// archive-relative. A VirtualFile lives for one pipeline run and is replaced
// wholesale when the project re-runs.
type VirtualFile struct {
	Path string
	Text string
	Data []byte
	Kind ContentKind
}

// DecodedArchive maps entry paths to decoded files. Keys are unique; insertion
// order carries no meaning.
type DecodedArchive struct {
	Files map[string]VirtualFile
}

// Len returns the number of decoded entries.
func (a *DecodedArchive) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Files)
}

// Project is the UI-owned record for one remotely hosted zipped web project.
//
// The pipeline never mutates a Project it was handed; it works on a Clone and
// publishes whole-record snapshots, so concurrent runs for different projects
// cannot interleave partial field writes.
type Project struct {
	ID      string
	Files   []string // declared archive file names, in listing order
	Status  Status
	Preview string // preview handle while running, empty otherwise
	Log     []LogEntry
	Archive *DecodedArchive // retained for inspection after a successful run
}

// Clone returns a deep copy of the project record. The decoded archive is
// shared (it is replaced wholesale, never edited in place).
func (p Project) Clone() Project {
	out := p
	out.Files = append([]string(nil), p.Files...)
	out.Log = append([]LogEntry(nil), p.Log...)
	return out
}

// ArchiveFile returns the archive name the pipeline should download: the
// first declared file, or "" when none are declared.
func (p Project) ArchiveFile() string {
	if len(p.Files) == 0 {
		return ""
	}
	return p.Files[0]
}
