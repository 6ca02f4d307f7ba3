package insight

import "time"

// timeNow is replaced in tests to pin the clock.
var timeNow = time.Now
