// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// testDBSemaphore serializes DuckDB use across tests. It is held for the
// whole test so only one test has an active database at a time.
var testDBSemaphore = make(chan struct{}, 1)

const fullHeader = "Poster_Link,Series_Title,Released_Year,Certificate,Runtime,Genre,IMDB_Rating,Overview,Meta_score,Director,Star1,Star2,Star3,Star4,No_of_Votes,Gross\n"

// sampleCSV has four clean rows and four rows the cleaning rules drop:
// a blank Meta_score, a blank Gross, a non-numeric year and a blank
// Certificate.
const sampleCSV = fullHeader +
	`http://p/1.jpg,The Shawshank Redemption,1994,A,142 min,Drama,9.3,Two imprisoned men bond.,80,Frank Darabont,Tim Robbins,Morgan Freeman,Bob Gunton,William Sadler,2343110,"28,341,469"
http://p/2.jpg,The Godfather,1972,A,175 min,"Crime, Drama",9.2,An organized crime dynasty.,100,Francis Ford Coppola,Marlon Brando,Al Pacino,James Caan,Diane Keaton,1620367,"134,966,411"
http://p/3.jpg,No Meta,2001,U,100 min,Drama,8.0,Missing metascore.,,Some Director,A One,B Two,C Three,D Four,1000,"1,000"
http://p/4.jpg,No Gross,2002,U,100 min,Drama,8.0,Missing gross.,70,Some Director,A One,B Two,C Three,D Four,1000,
http://p/5.jpg,Apollo 13,PG,U,140 min,Drama,7.6,Bad year.,77,Ron Howard,Tom Hanks,Bill Paxton,Kevin Bacon,Gary Sinise,269197,"173,837,933"
http://p/6.jpg,No Certificate,2003,,100 min,Comedy,7.0,Missing certificate.,60,Some Director,A One,B Two,C Three,D Four,1000,"2,000"
http://p/7.jpg,The Dark Knight,2008,UA,152 min,"Action, Crime, Drama",9.0,Batman faces the Joker.,84,Christopher Nolan,Christian Bale,Heath Ledger,Aaron Eckhart,Michael Caine,2303232,"534,858,444"
http://p/8.jpg,"  Padded Title  ",2010,U,90 min,Comedy,7.5,Dollar gross.,65,Jane Doe,X Actor,Y Actor,Z Actor,W Actor,"1,234",$1000
`

// setupTestLoader opens a loader and holds testDBSemaphore until the test
// completes.
func setupTestLoader(t *testing.T) *Loader {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := DefaultConfig()
	cfg.Threads = 1
	cfg.MaxMemory = "256MB"
	cfg.QueryTimeout = 60 * time.Second

	l, err := Open(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := l.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return l
}

// writeCSV writes content to name inside a fresh temp directory.
func writeCSV(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}
