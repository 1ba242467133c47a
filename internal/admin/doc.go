// Package admin implements the line-oriented administration menu for
// lighting configurations.
//
// The menu reads answers line by line from an io.Reader and writes prompts to
// an io.Writer, so it runs the same against a terminal and against a test
// buffer. Every action maps onto one lightconfig.Store call, preceded by a Get
// where the current row is needed.
//
//	1. List all users
//	2. Add/Update user
//	3. Remove user
//	4. Enable/Disable user
//	5. Exit
package admin
