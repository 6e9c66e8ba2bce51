package digest

// Caller identifies who asked for a digest run. It is built once at the
// boundary and passed down explicitly.
type Caller interface {
	isCaller()
}

// SystemCaller is the scheduled job; it may mail every user.
type SystemCaller struct{}

// UserCaller is an interactive user; it may only mail itself.
type UserCaller struct {
	Email string
}

func (SystemCaller) isCaller() {}
func (UserCaller) isCaller()   {}
