package service_test

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/mocks"
	"github.com/siteforge/content-pipeline/internal/repository"
)

// completeDoc passes every blocking audit rule
const completeDoc = `<html>
<head>
<title>Bluebird Bakery</title>
<meta name="description" content="Fresh sourdough daily in Portland.">
</head>
<body>
<h1>Bread worth waking up for</h1>
<p>Trusted by the whole neighborhood. Loaves from $6.</p>
<a href="/order">Buy now</a>
</body>
</html>`

// noCTADoc is structurally sound but has no recognized call to action
const noCTADoc = `<html>
<head>
<title>Bluebird Bakery</title>
<meta name="description" content="Fresh sourdough daily in Portland.">
</head>
<body>
<h1>Bread worth waking up for</h1>
<p>We bake every morning.</p>
</body>
</html>`

func newTestRepos() (*repository.Repositories, *mocks.MemStore) {
	ms := mocks.NewMemStore()
	return repository.New(ms), ms
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// clock is a controllable time source for services with a Now field
type clock struct {
	now time.Time
}

func newClock(start time.Time) *clock {
	return &clock{now: start}
}

func (c *clock) Now() time.Time {
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
