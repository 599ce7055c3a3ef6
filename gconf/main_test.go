package gconf

import "time"

var now = time.Date(2019, 5, 1, 12, 0, 0, 0, time.UTC)
