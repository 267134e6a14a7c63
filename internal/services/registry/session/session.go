// Package session runs the interactive customer registration prompt.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/cadastro/internal/platform/errors"
	"github.com/louisbranch/cadastro/internal/platform/i18n/catalog"
	"github.com/louisbranch/cadastro/internal/services/registry/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/message"
)

const tracerName = "github.com/louisbranch/cadastro/internal/services/registry/session"

// Menu answers offered when a CPF is already registered.
const (
	optionRetryCPF = "1"
	optionRestart  = "2"
	optionQuit     = "3"
)

// Registrar is the registration surface the prompt drives.
type Registrar interface {
	ValidateCPF(cpf string) error
	Exists(ctx context.Context, cpf string) (bool, error)
	Lookup(ctx context.Context, cpf string) (storage.Customer, error)
	Register(ctx context.Context, name, cpf string) (storage.Customer, error)
}

// Options configures a Session.
type Options struct {
	Input     io.Reader
	Output    io.Writer
	Locale    string
	SessionID string
	// Tracer defaults to the global OpenTelemetry tracer provider.
	Tracer trace.Tracer
	// Logger defaults to the standard logger.
	Logger *log.Logger
}

// Session reads registrations line by line until the user quits or input ends.
type Session struct {
	registrar Registrar
	in        *bufio.Reader
	inErr     error
	out       io.Writer
	printer   *message.Printer
	locale    string
	id        string
	tracer    trace.Tracer
	logger    *log.Logger
	quitWord  string
}

// New builds a session over registrar.
func New(registrar Registrar, opts Options) (*Session, error) {
	if registrar == nil {
		return nil, errors.New("registrar is required")
	}
	if opts.Input == nil {
		return nil, errors.New("input is required")
	}
	out := opts.Output
	if out == nil {
		out = io.Discard
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	bundle := catalog.Default()
	locale := bundle.Resolve(opts.Locale)
	printer := bundle.Printer(locale)
	return &Session{
		registrar: registrar,
		in:        bufio.NewReader(opts.Input),
		out:       out,
		printer:   printer,
		locale:    locale,
		id:        opts.SessionID,
		tracer:    tracer,
		logger:    logger,
		quitWord:  printer.Sprintf("session.name.quit_word"),
	}, nil
}

type outcome int

const (
	outcomeNext outcome = iota
	outcomeQuit
)

// Run loops over registrations. It returns nil when the user quits or input
// reaches EOF, and the context error when ctx is done.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		result, err := s.registerOne(ctx)
		if err != nil {
			return err
		}
		if result == outcomeQuit {
			return nil
		}
	}
}

func (s *Session) registerOne(ctx context.Context) (outcome, error) {
	name, ok := s.readName()
	if !ok {
		return outcomeQuit, s.inErr
	}
	if strings.EqualFold(name, s.quitWord) {
		s.println("session.exit")
		return outcomeQuit, nil
	}

	cpf, result, err := s.readCPF(ctx)
	if err != nil || result == outcomeQuit || cpf == "" {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return outcomeQuit, err
	}

	s.register(ctx, name, cpf)
	return outcomeNext, nil
}

// readName prompts until a non-empty name arrives. ok is false on EOF.
func (s *Session) readName() (string, bool) {
	for {
		fmt.Fprintln(s.out)
		s.println("session.name.prompt", s.quitWord)
		line, ok := s.readLine()
		if !ok {
			return "", false
		}
		if name := strings.TrimSpace(line); name != "" {
			return name, true
		}
	}
}

// readCPF prompts until a valid, unregistered CPF arrives. An empty cpf with
// outcomeNext means the registration restarts from the name prompt.
func (s *Session) readCPF(ctx context.Context) (string, outcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", outcomeQuit, err
		}
		s.println("session.cpf.prompt")
		line, ok := s.readLine()
		if !ok {
			return "", outcomeQuit, s.inErr
		}
		cpf := strings.TrimSpace(line)

		if err := s.registrar.ValidateCPF(cpf); err != nil {
			switch apperrors.GetCode(err) {
			case apperrors.CodeCPFInvalidCheckDigits:
				s.println("session.cpf.invalid_check_digits")
			default:
				s.println("session.cpf.invalid_format")
			}
			continue
		}

		exists, err := s.registrar.Exists(ctx, cpf)
		if err != nil {
			s.reportError(err)
			return "", outcomeNext, nil
		}
		if !exists {
			return cpf, outcomeNext, nil
		}

		fmt.Fprintln(s.out)
		s.println("session.cpf.duplicate")
		if err := s.showExisting(ctx, cpf); err != nil {
			s.reportError(err)
			return "", outcomeNext, nil
		}
		switch answer, ok := s.menu(); {
		case !ok:
			return "", outcomeQuit, s.inErr
		case answer == optionRetryCPF:
			continue
		case answer == optionRestart:
			return "", outcomeNext, nil
		case answer == optionQuit:
			return "", outcomeQuit, nil
		default:
			s.println("session.menu.invalid")
		}
	}
}

func (s *Session) showExisting(ctx context.Context, cpf string) error {
	customer, err := s.registrar.Lookup(ctx, cpf)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			return nil
		}
		return err
	}
	fmt.Fprintln(s.out)
	s.println("session.customer.existing")
	s.println("session.customer.id", strconv.FormatInt(customer.ID, 10))
	s.println("session.customer.name", customer.Name)
	s.println("session.customer.cpf", customer.CPF)
	return nil
}

func (s *Session) menu() (string, bool) {
	fmt.Fprintln(s.out)
	s.println("session.menu.title")
	s.println("session.menu.retry")
	s.println("session.menu.restart")
	s.println("session.menu.quit")
	s.printer.Fprintf(s.out, "session.menu.prompt")
	line, ok := s.readLine()
	return strings.TrimSpace(line), ok
}

func (s *Session) register(ctx context.Context, name, cpf string) {
	ctx, span := s.tracer.Start(ctx, "registry.register")
	defer span.End()
	if s.id != "" {
		span.SetAttributes(attribute.String("session.id", s.id))
	}

	customer, err := s.registrar.Register(ctx, name, cpf)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "register failed")
		span.SetAttributes(attribute.String("registry.outcome", string(apperrors.GetCode(err))))
		s.reportError(err)
		return
	}
	span.SetAttributes(
		attribute.String("registry.outcome", "registered"),
		attribute.Int64("customer.id", customer.ID),
	)
	fmt.Fprintln(s.out)
	s.println("session.registered")
}

// reportError shows err to the user. Failures other than rejected input are
// also logged.
func (s *Session) reportError(err error) {
	if !apperrors.GetCode(err).Validation() {
		s.logger.Printf("session %s: %v", s.id, err)
	}
	s.println("session.storage_error", apperrors.UserMessage(err, s.locale))
}

func (s *Session) println(key string, args ...any) {
	s.printer.Fprintf(s.out, key, args...)
	fmt.Fprintln(s.out)
}

// readLine returns the next input line without its terminator. Lines have no
// length limit. ok is false once input is exhausted or fails.
func (s *Session) readLine() (string, bool) {
	if s.inErr != nil {
		return "", false
	}
	line, err := s.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.inErr = err
			return "", false
		}
		if line == "" {
			return "", false
		}
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), true
}
