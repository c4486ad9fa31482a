package http

import "sync"

// NewNavigation creates a Navigation for a page at path.
func NewNavigation(path string) *Navigation {
	return &Navigation{path: path}
}

// Navigation records where a page was sent. It implements auth.Navigator.
type Navigation struct {
	mutex  sync.Mutex
	path   string
	target string
}

// Navigate records path as the page's destination. The latest call wins.
func (n *Navigation) Navigate(path string) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.target = path
}

func (n *Navigation) Path() string {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.path
}

// Target retrieves the page's destination. The second return value is false
// if the page was not sent anywhere.
func (n *Navigation) Target() (string, bool) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.target, n.target != ""
}
