package jshost

import (
	"github.com/addonsim/uisim/pkg/kernel"
	"github.com/addonsim/uisim/pkg/script"
	"github.com/addonsim/uisim/pkg/widget"
)

// NewSession creates a kernel whose handlers run on a fresh JavaScript host.
// opts.Host and opts.NewHost are ignored.
func NewSession(opts kernel.Options) (*kernel.Kernel, *Host) {
	var host *Host
	opts.Host = nil
	opts.NewHost = func(reg *widget.Registry) script.Host {
		host = New(reg)
		return host
	}
	k := kernel.New(opts)
	host.Attach(k)
	return k, host
}

var _ Session = (*kernel.Kernel)(nil)
