package sqlite

import (
	"github.com/tinoosan/roombook/internal/service/account"
	"github.com/tinoosan/roombook/internal/service/booking"
)

var (
	_ account.Repo   = (*Store)(nil)
	_ account.Writer = (*Store)(nil)
	_ booking.Repo   = (*Store)(nil)
	_ booking.Writer = (*Store)(nil)
)
