package log

// Transporter is a log output destination (stdout, file, remote sink).
type Transporter interface {
	Name() string
	Write(entry Entry) error
	// Close releases resources. Write must not be called afterwards.
	Close() error
}
