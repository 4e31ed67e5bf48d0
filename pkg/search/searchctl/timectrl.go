package searchctl

import (
	"context"
	"fmt"
	"time"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

// TimeControl is a single overall thinking budget: unlike a two-player
// clock, the solver facade this package serves only ever answers "how good
// is this position," not "make a move before you flag," so one duration is
// all a caller ever needs.
type TimeControl struct {
	Budget time.Duration
}

// Limits returns a soft and hard limit derived from the budget. After the
// soft limit, no new iterative-deepening depth is started; the hard limit
// force-halts a depth already in progress.
func (t TimeControl) Limits() (time.Duration, time.Duration) {
	soft := t.Budget / 2
	hard := t.Budget
	return soft, hard
}

func (t TimeControl) String() string {
	return fmt.Sprintf("%.1fs", t.Budget.Seconds())
}

// EnforceTimeControl enforces the time control limits, if any. Returns the
// soft limit and whether one was set.
func EnforceTimeControl(ctx context.Context, h Handle, tc lang.Optional[TimeControl]) (time.Duration, bool) {
	c, ok := tc.V()
	if !ok {
		return 0, false
	}

	soft, hard := c.Limits()
	time.AfterFunc(hard, func() {
		h.Halt()
	})

	logw.Debugf(ctx, "Time control limits for %v: [%v; %v]", c, soft, hard)
	return soft, true
}
