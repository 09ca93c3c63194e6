package memory

import (
	"github.com/tinoosan/roombook/internal/service/account"
	"github.com/tinoosan/roombook/internal/service/booking"
)

// Compile-time interface assertions documenting which interfaces Store satisfies.
var (
	_ account.Repo   = (*Store)(nil)
	_ account.Writer = (*Store)(nil)
	_ booking.Repo   = (*Store)(nil)
	_ booking.Writer = (*Store)(nil)
)
