package platform

// Handle represents a single spawned process owned by the supervisor
type Handle interface {
	// PID returns the operating-system process id
	PID() int

	// Wait blocks until the process exits, whatever the cause
	Wait() error

	// Terminate requests process termination
	Terminate() error
}

// ProcessController abstracts process spawn and control across platforms
type ProcessController interface {
	// Start spawns the executable at path with the given whitespace-separated
	// argument string and returns a handle to the live process
	Start(path string, arguments string) (Handle, error)

	// IsAlive reports whether a process with the given pid still exists
	IsAlive(pid int) bool
}
