package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/srgjo27/rail_ticket/internal/adapter/repository/file"
	"github.com/srgjo27/rail_ticket/internal/core/domain"
	"github.com/srgjo27/rail_ticket/internal/core/services"
	"github.com/srgjo27/rail_ticket/internal/platform/config"
)

func main() {
	configPath := pflag.String("config", "", "path to the YAML config file (default $TICKET_CONFIG)")
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	pflag.Parse()

	if err := run(*configPath, *envFile); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath, envFile string) error {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return err
	}

	// The menu owns stdout; only warnings and worse reach stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := services.Open(ctx,
		file.CatalogFile{Path: cfg.CatalogPath},
		file.NewAccountFile(cfg.AccountsPath, logger),
		nil, logger)
	if err != nil {
		return err
	}

	return newConsole(backend, os.Stdin, os.Stdout).Run(ctx)
}

type console struct {
	auth    *services.AuthService
	search  *services.SearchService
	booking *services.BookingService

	in  *bufio.Scanner
	out io.Writer

	user *domain.User
}

func newConsole(backend *services.Backend, in io.Reader, out io.Writer) *console {
	return &console{
		auth:    services.NewAuthService(backend, 0),
		search:  services.NewSearchService(backend),
		booking: services.NewBookingService(backend),
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

const menu = `
1. Sign up
2. Login
3. My tickets
4. Search trains
5. Book a seat
6. Cancel a ticket
7. Exit
> `

var (
	errInputClosed = errors.New("input closed")
	errReadInput   = errors.New("reading input")
)

// Run reads menu choices until the user exits or the input ends. A
// failing reader is reported as an error.
func (c *console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "Train ticket reservations")

	for ctx.Err() == nil {
		fmt.Fprint(c.out, menu)

		choice, err := c.readLine()
		if errors.Is(err, errInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = c.signUp(ctx)
		case "2":
			err = c.login(ctx)
		case "3":
			err = c.listTickets()
		case "4":
			err = c.searchTrains()
		case "5":
			err = c.bookSeat(ctx)
		case "6":
			err = c.cancelTicket(ctx)
		case "7":
			fmt.Fprintln(c.out, "Bye")
			return nil
		default:
			fmt.Fprintf(c.out, "Unknown option %q\n", choice)
			continue
		}

		switch {
		case errors.Is(err, errInputClosed):
			return nil
		case errors.Is(err, errReadInput):
			return err
		case err != nil:
			fmt.Fprintln(c.out, "Error:", describe(err))
		}
	}

	return nil
}

func (c *console) readLine() (string, error) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", errReadInput, err)
		}
		return "", errInputClosed
	}

	return strings.TrimSpace(c.in.Text()), nil
}

func (c *console) prompt(label string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", label)

	return c.readLine()
}

func (c *console) promptInt(label string) (int, error) {
	raw, err := c.prompt(label)
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, raw)
	}

	return n, nil
}

func (c *console) credentials() (string, string, error) {
	name, err := c.prompt("Name")
	if err != nil {
		return "", "", err
	}

	password, err := c.prompt("Password")
	if err != nil {
		return "", "", err
	}

	return name, password, nil
}

func (c *console) signUp(ctx context.Context) error {
	name, password, err := c.credentials()
	if err != nil {
		return err
	}

	user, err := c.auth.SignUp(ctx, name, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Welcome %s, please log in\n", user.Name)

	return nil
}

func (c *console) login(ctx context.Context) error {
	name, password, err := c.credentials()
	if err != nil {
		return err
	}

	user, err := c.auth.Login(ctx, name, password)
	if err != nil {
		return err
	}

	c.user = user
	fmt.Fprintf(c.out, "Logged in as %s\n", user.Name)

	return nil
}

func (c *console) requireLogin() bool {
	if c.user == nil {
		fmt.Fprintln(c.out, "Please log in first")
		return false
	}

	return true
}

func (c *console) listTickets() error {
	if !c.requireLogin() {
		return nil
	}

	tickets, err := c.booking.ListTickets(c.user.ID)
	if err != nil {
		return err
	}

	if len(tickets) == 0 {
		fmt.Fprintln(c.out, "No tickets")
		return nil
	}

	for _, t := range tickets {
		fmt.Fprintf(c.out, "%s  train %s  %s -> %s  %s  row %d seat %d\n",
			t.ID, t.TrainID, t.Source, t.Destination, t.TravelDate, t.SeatRow, t.SeatCol)
	}

	return nil
}

func (c *console) searchTrains() error {
	source, err := c.prompt("From")
	if err != nil {
		return err
	}

	destination, err := c.prompt("To")
	if err != nil {
		return err
	}

	found := 0
	for train := range c.search.SearchTrains(source, destination) {
		found++
		departs, _ := train.DepartureTime(source)
		fmt.Fprintf(c.out, "%s (%s)  %s  departs %s  %d seats free\n",
			train.ID, train.TrainNumber, strings.Join(train.Stations, " - "),
			departs, train.AvailableSeats())
	}

	if found == 0 {
		fmt.Fprintln(c.out, "No trains found")
	}

	return nil
}

func (c *console) bookSeat(ctx context.Context) error {
	if !c.requireLogin() {
		return nil
	}

	trainID, err := c.prompt("Train ID")
	if err != nil {
		return err
	}

	availability, err := c.search.SeatAvailability(ctx, trainID)
	if err != nil {
		return err
	}
	printSeats(c.out, availability.Seats)

	row, err := c.promptInt("Row")
	if err != nil {
		return err
	}

	col, err := c.promptInt("Seat")
	if err != nil {
		return err
	}

	ticket, err := c.booking.BookSeat(ctx, services.BookRequest{
		UserID:  c.user.ID,
		TrainID: trainID,
		Row:     row,
		Col:     col,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Booked ticket %s\n", ticket.ID)

	return nil
}

func (c *console) cancelTicket(ctx context.Context) error {
	if !c.requireLogin() {
		return nil
	}

	ticketID, err := c.prompt("Ticket ID")
	if err != nil {
		return err
	}

	if err := c.booking.CancelTicket(ctx, c.user.ID, ticketID); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Ticket cancelled")

	return nil
}

func printSeats(w io.Writer, seats domain.SeatMatrix) {
	for i, row := range seats {
		fmt.Fprintf(w, "%3d ", i)
		for _, s := range row {
			if s == domain.SeatFree {
				fmt.Fprint(w, " .")
			} else {
				fmt.Fprint(w, " X")
			}
		}
		fmt.Fprintln(w)
	}
}

func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid name or password"
	case errors.Is(err, domain.ErrNameTaken):
		return "that name is already taken"
	case errors.Is(err, domain.ErrSeatUnavailable):
		return "that seat is already booked"
	case errors.Is(err, domain.ErrPersistence):
		return "could not save your change, nothing was modified"
	default:
		return err.Error()
	}
}
