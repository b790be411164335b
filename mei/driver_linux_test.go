//go:build linux

package mei

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestDecodeClientProperties(t *testing.T) {
	require := require.New(t)

	b := []byte{0x00, 0x10, 0x00, 0x00, 0x02, 0xaa, 0xbb, 0xcc, 0, 0, 0, 0, 0, 0, 0, 0}
	props := decodeClientProperties(b)
	require.Equal(uint32(4096), props.MaxMessageLength)
	require.Equal(uint8(2), props.ProtocolVersion)
}

func TestOpenDevice(t *testing.T) {
	require := require.New(t)

	t.Run("Missing node", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mei0")
		_, err := openDevice(path)
		require.Error(err)

		var pathErr *os.PathError
		require.ErrorAs(err, &pathErr)
		require.Equal(path, pathErr.Path)
		require.True(errors.Is(err, unix.ENOENT))
	})

	t.Run("Regular file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mei0")
		require.NoError(os.WriteFile(path, nil, 0o600))

		h, err := openDevice(path)
		require.NoError(err)

		// a regular file is always writable
		ready, err := h.WaitReady(100 * time.Millisecond)
		require.NoError(err)
		require.True(ready)

		n, err := h.Write([]byte{1, 2, 3})
		require.NoError(err)
		require.Equal(3, n)

		// connect-client is not a valid request on a regular file
		_, err = h.ConnectClient(AMTHIClientUUID)
		require.Error(err)

		require.NoError(h.Close())
		require.NoError(h.Close())
	})
}

// fullPipe returns a pipe whose write end is not writable until the read end is drained.
func fullPipe(t *testing.T) (r int, w int) {
	t.Helper()

	var fds [2]int
	require.NoError(t, unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC))
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})

	chunk := make([]byte, 4096)
	for {
		if _, err := unix.Write(fds[1], chunk); err != nil {
			require.ErrorIs(t, err, unix.EAGAIN)
			break
		}
	}

	return fds[0], fds[1]
}

func TestWaitReady(t *testing.T) {
	require := require.New(t)

	t.Run("Full pipe times out", func(t *testing.T) {
		_, w := fullPipe(t)
		h := &fdHandle{fd: w}

		start := time.Now()
		ready, err := h.WaitReady(50 * time.Millisecond)
		require.NoError(err)
		require.False(ready)
		require.GreaterOrEqual(time.Since(start), 50*time.Millisecond)
	})

	t.Run("Drained pipe is ready", func(t *testing.T) {
		r, w := fullPipe(t)
		h := &fdHandle{fd: w}

		go func() {
			time.Sleep(20 * time.Millisecond)
			buf := make([]byte, 65536)
			for {
				if _, err := unix.Read(r, buf); err != nil {
					return
				}
			}
		}()

		ready, err := h.WaitReady(time.Second)
		require.NoError(err)
		require.True(ready)
	})

	t.Run("Reader closed", func(t *testing.T) {
		var fds [2]int
		require.NoError(unix.Pipe2(fds[:], unix.O_CLOEXEC))
		defer unix.Close(fds[1])
		require.NoError(unix.Close(fds[0]))

		h := &fdHandle{fd: fds[1]}
		ready, err := h.WaitReady(100 * time.Millisecond)
		require.ErrorIs(err, unix.EIO)
		require.False(ready)
	})

	t.Run("Descriptor above 1024", func(t *testing.T) {
		const highFD = 1500

		var rl unix.Rlimit
		require.NoError(unix.Getrlimit(unix.RLIMIT_NOFILE, &rl))
		if rl.Cur <= highFD {
			if rl.Max <= highFD {
				t.Skipf("RLIMIT_NOFILE hard limit %d too low", rl.Max)
			}
			saved := rl
			rl.Cur = highFD + 1
			require.NoError(unix.Setrlimit(unix.RLIMIT_NOFILE, &rl))
			t.Cleanup(func() { _ = unix.Setrlimit(unix.RLIMIT_NOFILE, &saved) })
		}

		var fds [2]int
		require.NoError(unix.Pipe2(fds[:], unix.O_CLOEXEC))
		defer unix.Close(fds[0])
		defer unix.Close(fds[1])

		require.NoError(unix.Dup3(fds[1], highFD, unix.O_CLOEXEC))
		h := &fdHandle{fd: highFD}
		defer h.Close()

		var (
			ready bool
			err   error
		)
		require.NotPanics(func() { ready, err = h.WaitReady(10 * time.Millisecond) })
		require.NoError(err)
		require.True(ready)
	})

	t.Run("Signal does not end the wait", func(t *testing.T) {
		_, w := fullPipe(t)
		h := &fdHandle{fd: w}

		type result struct {
			ready   bool
			err     error
			elapsed time.Duration
		}
		tidCh := make(chan int, 1)
		resCh := make(chan result, 1)

		go func() {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			tidCh <- unix.Gettid()
			start := time.Now()
			ready, err := h.WaitReady(300 * time.Millisecond)
			resCh <- result{ready, err, time.Since(start)}
		}()

		tid := <-tidCh
		time.Sleep(50 * time.Millisecond)
		require.NoError(unix.Tgkill(unix.Getpid(), tid, unix.SIGURG))

		res := <-resCh
		require.NoError(res.err)
		require.False(res.ready)
		require.GreaterOrEqual(res.elapsed, 300*time.Millisecond)
	})
}
