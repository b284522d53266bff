package box

// Page is embedded by page objects so they share the session they were built
// with.
type Page struct {
	Driver *BoxDriver
}

// NewPage for driver
func NewPage(driver *BoxDriver) Page {
	return Page{Driver: driver}
}
