package service

import "time"

// Clock 回傳目前時間，測試時可固定
type Clock func() time.Time

// SystemClock 以指定時區回傳目前時間，判斷活動是否已開始時使用
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time {
		return time.Now().In(loc)
	}
}
