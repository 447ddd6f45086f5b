package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/eldercare/careconnect/internal/client/account"
	"github.com/eldercare/careconnect/internal/client/auth"
	"github.com/eldercare/careconnect/internal/client/view"
	"github.com/eldercare/careconnect/internal/core/domain"
)

const renderEvery = time.Second

func newFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := newFlags("signup")
	var form account.SignupForm
	var role string
	fs.StringVar(&form.Name, "name", "", "full name")
	fs.StringVar(&form.Email, "email", "", "email address")
	fs.StringVar(&form.Password, "password", "", "password")
	fs.StringVar(&form.ConfirmPassword, "confirm", "", "password again")
	fs.StringVar(&form.DateOfBirth, "dob", "", "date of birth, YYYY-MM-DD")
	fs.StringVar(&role, "role", string(domain.RolePatient), "patient, family or caregiver")
	if err := fs.Parse(args); err != nil {
		return err
	}
	form.Role = domain.Role(role)

	user, err := a.accounts.Signup(ctx, form)
	if err != nil {
		return errors.New(account.Message(err, account.MsgSignupFailed))
	}
	fmt.Fprintf(a.out, "Registration successful! Account created for %s. You can now log in.\n", user.Email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	remember := fs.Bool("remember", false, "stay signed in on this device")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.accounts.Login(ctx, *email, *password, *remember)
	if err != nil {
		return errors.New(account.Message(err, account.MsgLoginFailed))
	}
	fmt.Fprintf(a.out, "Welcome, %s (%s).\n", user.Name, user.Role)
	return nil
}

func (a *app) logout(ctx context.Context, _ []string) error {
	if err := a.accounts.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func (a *app) whoami(_ context.Context, _ []string) error {
	user := a.identity.User()
	if user == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	persistence := "this session"
	if a.identity.RememberMe() {
		persistence = "remembered"
	}
	fmt.Fprintf(a.out, "%s <%s>\nrole: %s\nsession: %s\n", user.Name, user.Email, user.Role, persistence)
	return nil
}

func (a *app) services(_ context.Context, _ []string) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tSERVICE\tSUGGESTED RATE")
	for _, s := range domain.Catalogue {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Type, s.Name, s.SuggestedRate)
	}
	return tw.Flush()
}

func (a *app) request(ctx context.Context, args []string) error {
	fs := newFlags("request")
	service := fs.String("service", "", "service type (see: careclient services)")
	requirements := fs.String("requirements", "", "what you need, schedule, special requirements")
	cost := fs.String("cost", "", "budget per hour")
	if err := fs.Parse(args); err != nil {
		return err
	}

	v, err := view.For(a.identity, a.viewDeps())
	if err != nil {
		return describeViewError(err)
	}
	pv, ok := v.(*view.PatientView)
	if !ok {
		return errors.New("only patients and family members can submit requests")
	}

	pv.Form.ServiceType, pv.Form.Requirements, pv.Form.Cost = *service, *requirements, *cost
	out, err := pv.Submit(ctx)
	fmt.Fprintln(a.out, out.Message)
	if err != nil {
		return errors.New("request not submitted")
	}
	fmt.Fprintf(a.out, "Request id: %s\n", out.Request.ID)
	return nil
}

func (a *app) watch(ctx context.Context, _ []string) error {
	v, err := view.For(a.identity, a.viewDeps())
	if err != nil {
		return describeViewError(err)
	}
	cv, ok := v.(*view.CaregiverView)
	if !ok {
		return errors.New("only caregivers can watch pending requests")
	}

	if err := cv.Mount(ctx); err != nil {
		return err
	}
	defer cv.Unmount()

	fmt.Fprintln(a.out, "Watching pending requests. Commands: approve <id>, reject <id>, refresh, quit")
	lines := readLines(a.in)
	ticker := time.NewTicker(renderEvery)
	defer ticker.Stop()

	// Only this loop writes to a.out. Background actions report here.
	acts := &watchActions{results: make(chan string)}
	defer acts.drain(a.out)

	var shown string
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			shown = a.renderIfChanged(cv, shown)
		case msg := <-acts.results:
			fmt.Fprintln(a.out, msg)
			shown = a.renderIfChanged(cv, shown)
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := a.handleWatchCommand(ctx, cv, acts, line); quit {
				return nil
			}
			shown = a.renderIfChanged(cv, "")
		}
	}
}

// watchActions tracks approve and reject calls started from the watch loop.
type watchActions struct {
	wg      sync.WaitGroup
	results chan string
}

func (w *watchActions) start(fn func() string) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.results <- fn()
	}()
}

// drain waits for outstanding actions and prints what they report.
func (w *watchActions) drain(out io.Writer) {
	go func() {
		w.wg.Wait()
		close(w.results)
	}()
	for msg := range w.results {
		fmt.Fprintln(out, msg)
	}
}

func (a *app) handleWatchCommand(ctx context.Context, cv *view.CaregiverView, acts *watchActions, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "quit", "exit":
		return true
	case "refresh":
		if err := cv.Refresh(ctx); err != nil {
			fmt.Fprintln(a.out, "Could not refresh:", err)
		}
	case "approve", "reject":
		if len(fields) != 2 {
			fmt.Fprintf(a.out, "usage: %s <id>\n", fields[0])
			return false
		}
		// The call runs in the background so the screen stays responsive;
		// a repeat while it is outstanding is ignored.
		id, decision := fields[1], domain.Decision(fields[0])
		acts.start(func() string {
			var (
				sent bool
				err  error
			)
			if decision == domain.DecisionApprove {
				sent, err = cv.Approve(ctx, id)
			} else {
				sent, err = cv.Reject(ctx, id)
			}
			switch {
			case err != nil:
				return fmt.Sprintf("Could not %s %s: %v", decision, id, err)
			case !sent:
				return fmt.Sprintf("%s is already being processed", id)
			default:
				return fmt.Sprintf("%s: %s done", id, decision)
			}
		})
	default:
		fmt.Fprintf(a.out, "unknown command %q\n", fields[0])
	}
	return false
}

// renderIfChanged prints the pending list when it differs from last and
// returns the new fingerprint.
func (a *app) renderIfChanged(cv *view.CaregiverView, last string) string {
	pending := cv.Pending()
	ids := make([]string, 0, len(pending))
	for _, r := range pending {
		ids = append(ids, r.ID)
	}
	fp := "ids:" + strings.Join(ids, ",")
	if fp == last {
		return last
	}

	if len(pending) == 0 {
		fmt.Fprintln(a.out, "No pending requests.")
		return fp
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSERVICE\tCOST/HR\tFROM\tREQUIREMENTS")
	for _, r := range pending {
		marker := ""
		if cv.InFlight(r.ID) {
			marker = " ..."
		}
		fmt.Fprintf(tw, "%s%s\t%s\t$%.2f\t%s\t%s\n", r.ID, marker, r.ServiceType, r.Cost, r.UserName, r.Requirements)
	}
	_ = tw.Flush()
	return fp
}

func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			ch <- sc.Text()
		}
	}()
	return ch
}

func (a *app) viewDeps() view.Deps {
	return view.Deps{
		API:          a.api,
		PollInterval: a.cfg.PollInterval,
		Log:          a.log,
	}
}

func describeViewError(err error) error {
	switch {
	case errors.Is(err, auth.ErrAnonymous):
		return errors.New("not signed in; run: careclient login")
	case errors.Is(err, view.ErrLoading):
		return errors.New("session is still loading, try again")
	}
	return err
}
