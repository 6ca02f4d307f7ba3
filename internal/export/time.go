package export

import "time"

var timeNow = time.Now
