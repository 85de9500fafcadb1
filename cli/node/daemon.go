// This file contains the client and the daemon exchanging requests over a
// UNIX socket. A request is a single JSON document and the daemon answers with
// a stream of JSON responses until the connection is closed.

package node

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"go.dedis.ch/matchgame"
	"go.dedis.ch/matchgame/cli"
	"golang.org/x/xerrors"
)

const (
	ioTimeout = 30 * time.Second

	// SocketName is the name of the socket file created in the config folder.
	SocketName = "daemon.sock"

	socketPerm = 0o600
)

// Request is the message sent by a client to have the daemon run an action.
type Request struct {
	ID     string  `json:"id"`
	Action uint16  `json:"action"`
	Flags  FlagSet `json:"flags"`
}

// NewRequest creates a request for the action with a fresh identifier.
func NewRequest(action uint16, flags FlagSet) Request {
	return Request{
		ID:     xid.New().String(),
		Action: action,
		Flags:  flags,
	}
}

// response is a line of output from the daemon. A failed response terminates
// the exchange.
type response struct {
	ID      string `json:"id"`
	Failed  bool   `json:"failed,omitempty"`
	Message string `json:"message"`
}

// socketClient opens a connection to the daemon for each request.
//
// - implements node.Client
type socketClient struct {
	socketpath  string
	out         io.Writer
	dialTimeout time.Duration
	dialFn      func(network, addr string, timeout time.Duration) (net.Conn, error)
}

// Send implements node.Client. It writes the request to the daemon and copies
// every response line to the output until the daemon hangs up.
func (c socketClient) Send(req Request) error {
	conn, err := c.dialFn("unix", c.socketpath, c.dialTimeout)
	if err != nil {
		return xerrors.Errorf("couldn't open connection: %v", err)
	}

	defer conn.Close()

	err = json.NewEncoder(conn).Encode(req)
	if err != nil {
		return xerrors.Errorf("couldn't write to daemon: %v", err)
	}

	dec := json.NewDecoder(conn)

	for {
		var resp response

		err = dec.Decode(&resp)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return xerrors.Errorf("failed to read response: %v", err)
		}

		if resp.Failed {
			return xerrors.New(resp.Message)
		}

		fmt.Fprintln(c.out, resp.Message)
	}
}

// socketDaemon serves the actions over a UNIX socket. Only the owner of the
// config folder can reach it as the socket file is not readable by others.
//
// - implements node.Daemon
type socketDaemon struct {
	sync.WaitGroup

	logger      zerolog.Logger
	socketpath  string
	injector    Injector
	actions     *actionMap
	closing     chan struct{}
	readTimeout time.Duration
	listenFn    func(network, addr string) (net.Listener, error)
	dialFn      func(network, addr string, timeout time.Duration) (net.Conn, error)
}

// Listen implements node.Daemon. It creates the socket file, replacing a stale
// one left by a daemon that did not shut down properly.
func (d *socketDaemon) Listen() error {
	err := d.clearStale()
	if err != nil {
		return err
	}

	socket, err := d.listenFn("unix", d.socketpath)
	if err != nil {
		return xerrors.Errorf("couldn't bind socket: %v", err)
	}

	err = os.Chmod(d.socketpath, socketPerm)
	if err != nil {
		socket.Close()
		return xerrors.Errorf("couldn't restrict socket: %v", err)
	}

	d.Add(2)

	go func() {
		defer d.Done()

		<-d.closing
		socket.Close()
	}()

	go func() {
		defer d.Done()

		for {
			conn, err := socket.Accept()
			if err != nil {
				select {
				case <-d.closing:
				default:
					d.logger.Err(err).Msg("daemon closed unexpectedly")
				}
				return
			}

			go d.serve(conn)
		}
	}()

	return nil
}

func (d *socketDaemon) clearStale() error {
	_, err := os.Stat(d.socketpath)
	if os.IsNotExist(err) {
		return nil
	}

	conn, err := d.dialFn("unix", d.socketpath, time.Second)
	if err == nil {
		conn.Close()
		return xerrors.Errorf("daemon already running on '%s'", d.socketpath)
	}

	d.logger.Warn().Str("path", d.socketpath).Msg("removing stale socket")

	err = os.Remove(d.socketpath)
	if err != nil {
		return xerrors.Errorf("couldn't remove stale socket: %v", err)
	}

	return nil
}

func (d *socketDaemon) serve(conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(d.readTimeout))

	var req Request

	err := json.NewDecoder(conn).Decode(&req)
	if err == io.EOF {
		// Nothing was sent, which is how the connectivity is probed.
		return
	}

	w := &responseWriter{enc: json.NewEncoder(conn), id: req.ID}

	if err != nil {
		d.reply(w, xerrors.Errorf("malformed request: %v", err))
		return
	}

	logger := d.logger.With().Str("request", req.ID).Uint16("action", req.Action).Logger()
	logger.Debug().Interface("flags", req.Flags).Msg("request received")

	action := d.actions.Get(req.Action)
	if action == nil {
		d.reply(w, xerrors.Errorf("unknown command '%d'", req.Action))
		return
	}

	start := time.Now()

	err = action.Execute(Context{
		Injector: d.injector,
		Flags:    req.Flags,
		Out:      w,
	})
	if err != nil {
		d.reply(w, xerrors.Errorf("command error: %v", err))
		return
	}

	logger.Debug().Dur("duration", time.Since(start)).Msg("request done")
}

func (d *socketDaemon) reply(w *responseWriter, err error) {
	d.logger.Debug().Err(err).Str("request", w.id).Msg("request failed")

	encErr := w.enc.Encode(response{ID: w.id, Failed: true, Message: err.Error()})
	if encErr != nil {
		d.logger.Warn().Err(encErr).Msg("connection to daemon has error")
	}
}

// Close implements node.Daemon. It stops accepting connections and waits for
// the listener to be released.
func (d *socketDaemon) Close() error {
	close(d.closing)
	d.Wait()

	return nil
}

// responseWriter turns each write of an action into a response line.
//
// - implements io.Writer
type responseWriter struct {
	enc *json.Encoder
	id  string
}

// Write implements io.Writer.
func (w *responseWriter) Write(data []byte) (int, error) {
	err := w.enc.Encode(response{ID: w.id, Message: string(data)})
	if err != nil {
		return 0, xerrors.Errorf("while packing data: %v", err)
	}

	return len(data), nil
}

// socketFactory creates the daemon and its clients on the socket of the
// config folder.
//
// - implements node.DaemonFactory
type socketFactory struct {
	injector Injector
	actions  *actionMap
	out      io.Writer
}

// ClientFromContext implements node.DaemonFactory.
func (f socketFactory) ClientFromContext(ctx cli.Flags) (Client, error) {
	client := socketClient{
		socketpath:  socketPath(ctx),
		out:         f.out,
		dialTimeout: ioTimeout,
		dialFn:      net.DialTimeout,
	}

	return client, nil
}

// DaemonFromContext implements node.DaemonFactory.
func (f socketFactory) DaemonFromContext(ctx cli.Flags) (Daemon, error) {
	path := socketPath(ctx)

	daemon := &socketDaemon{
		logger:      matchgame.Logger.With().Str("daemon", path).Logger(),
		socketpath:  path,
		injector:    f.injector,
		actions:     f.actions,
		closing:     make(chan struct{}),
		readTimeout: ioTimeout,
		listenFn:    net.Listen,
		dialFn:      net.DialTimeout,
	}

	return daemon, nil
}

func socketPath(ctx cli.Flags) string {
	return filepath.Join(ctx.Path("config"), SocketName)
}
