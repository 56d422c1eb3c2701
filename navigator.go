package goAuthClient

// Navigator sends the user to an application entry point. It is called with
// Config.LoginPath after an unrecoverable refresh failure.
//
// A browser-style app redirects; a CLI prints a hint; a server ignores it.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) {
	if f != nil {
		f(path)
	}
}

// NoOpNavigator ignores navigation requests.
type NoOpNavigator struct{}

func (NoOpNavigator) Navigate(string) {}
