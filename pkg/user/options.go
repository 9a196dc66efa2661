package user

// flags holds the privilege flags of a user being created
type flags struct {
	isActive    bool
	isStaff     bool
	isSuperuser bool
}

// Option overrides a default of the user being created
type Option func(f *flags)

// WithActive overrides the active flag
func WithActive(v bool) Option {
	return func(f *flags) { f.isActive = v }
}

// WithStaff overrides the staff flag
func WithStaff(v bool) Option {
	return func(f *flags) { f.isStaff = v }
}

// WithSuperuser overrides the superuser flag
func WithSuperuser(v bool) Option {
	return func(f *flags) { f.isSuperuser = v }
}
