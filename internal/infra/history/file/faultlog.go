package file

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bryanwahyu/chartsight/internal/domain/faults"
)

// FaultLog persists failed analysis attempts as JSON lines next to the
// history document. Append-only; the raw diagnostic payload is kept verbatim.
type FaultLog struct {
	mu     sync.Mutex
	path   string
	nextID int64
}

func OpenFaultLog(path string) (*FaultLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	l := &FaultLog{path: path, nextID: 1}
	existing, err := l.readAll()
	if err != nil {
		return nil, err
	}
	if n := len(existing); n > 0 {
		l.nextID = existing[n-1].ID + 1
	}
	return l, nil
}

func (l *FaultLog) Save(ctx context.Context, f *faults.Fault) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f.ID = l.nextID
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	line, err := json.Marshal(f)
	if err != nil {
		return err
	}

	fh, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer fh.Close()
	if _, err := fh.Write(append(line, '\n')); err != nil {
		return err
	}
	l.nextID++
	return nil
}

// Latest returns up to limit faults, newest first.
func (l *FaultLog) Latest(ctx context.Context, limit int) ([]*faults.Fault, error) {
	if limit <= 0 {
		limit = 20
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	all, err := l.readAll()
	if err != nil {
		return nil, err
	}
	out := make([]*faults.Fault, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (l *FaultLog) readAll() ([]*faults.Fault, error) {
	fh, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var out []*faults.Fault
	sc := bufio.NewScanner(fh)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var f faults.Fault
		if err := json.Unmarshal(sc.Bytes(), &f); err != nil {
			// A torn last line from a crashed process is skipped.
			continue
		}
		out = append(out, &f)
	}
	return out, sc.Err()
}
