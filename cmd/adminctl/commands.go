package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/system/approval"
	"github.com/dalemusser/enrolldesk/internal/app/system/format"
	"github.com/dalemusser/enrolldesk/internal/app/system/poll"
	"github.com/dalemusser/enrolldesk/internal/domain/models"
)

type dashboardCmd struct{}

func (c *dashboardCmd) Run(e *env) error {
	ctx, cancel := context.WithTimeout(e.Ctx, e.Timeout)
	defer cancel()
	s, err := e.Client.Dashboard(ctx, e.Token)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total users\t%s\n", format.Count(int64(s.TotalUsers)))
	fmt.Fprintf(tw, "Pending applications\t%s\n", format.Count(int64(s.PendingApplications)))
	fmt.Fprintf(tw, "Approved applications\t%s\n", format.Count(int64(s.ApprovedApplications)))
	fmt.Fprintf(tw, "Total revenue\t%s\n", format.Money(s.TotalRevenue))
	if len(s.RecentRegistrations) > 0 {
		fmt.Fprintln(tw, "\nRecent registrations\t")
		for _, r := range s.RecentRegistrations {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", format.Text(r.Name), format.Text(r.Email), format.Date(r.CreatedAt))
		}
	}
	return tw.Flush()
}

type paymentsListCmd struct {
	Status string `help:"Only show payments in this status." enum:",pending,approved,completed,rejected" default:""`
}

func (c *paymentsListCmd) Run(e *env) error {
	ctx, cancel := context.WithTimeout(e.Ctx, e.Timeout)
	defer cancel()
	ps, err := e.Client.ListPayments(ctx, e.Token)
	if err != nil {
		return fmt.Errorf("list payments: %w", err)
	}
	var rows []models.Payment
	for _, p := range ps {
		if c.Status == "" || p.EffectiveStatus() == c.Status {
			rows = append(rows, p)
		}
	}
	return printPayments(rows)
}

func printPayments(ps []models.Payment) error {
	if len(ps) == 0 {
		fmt.Println("No payments found")
		return nil
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tEMAIL\tAMOUNT\tMETHOD\tSTATUS\tDATE")
	for _, p := range ps {
		user := p.UserName
		if user == "" {
			user = p.UserID.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID.String(), format.Text(user), format.Text(p.UserEmail),
			format.Money(p.Amount), format.Text(p.Method),
			p.EffectiveStatus(), format.Date(p.CreatedAt))
	}
	return tw.Flush()
}

type paymentsApproveCmd struct {
	ID            string `arg:"" help:"Payment id."`
	RecordOnly    bool   `help:"Approve a payment that has no user id without updating any user."`
	ApproveStatus string `help:"Status written to the payment." env:"ENROLLDESK_APPROVE_STATUS" enum:"completed,approved" default:"completed"`
	NotifyMessage string `help:"Message sent to the user." env:"ENROLLDESK_NOTIFY_MESSAGE"`
}

func (c *paymentsApproveCmd) Run(e *env) error {
	wf, err := e.workflow(c.ApproveStatus, c.NotifyMessage)
	if err != nil {
		return err
	}
	req, err := requestFor(e, c.ID)
	if err != nil {
		return err
	}
	req.RecordOnly = c.RecordOnly

	ctx, cancel := context.WithTimeout(e.Ctx, 3*e.Timeout)
	defer cancel()
	res, err := wf.Approve(ctx, e.Token, req)
	if errors.Is(err, approval.ErrMissingUserID) {
		return fmt.Errorf("payment %s has no user id; rerun with --record-only to approve the record alone", c.ID)
	}
	if err != nil {
		return errors.New(approval.Alert(err))
	}
	fmt.Println(res.Message())
	if !res.Notified {
		fmt.Println("Note: the approval notification could not be sent.")
	}
	return nil
}

type paymentsRejectCmd struct {
	ID string `arg:"" help:"Payment id."`
}

func (c *paymentsRejectCmd) Run(e *env) error {
	wf, err := e.workflow("", "")
	if err != nil {
		return err
	}
	req, err := requestFor(e, c.ID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(e.Ctx, e.Timeout)
	defer cancel()
	res, err := wf.Reject(ctx, e.Token, req)
	if err != nil {
		return errors.New(approval.Alert(err))
	}
	fmt.Println(res.Message())
	return nil
}

// requestFor builds the workflow request from the current payment list. A
// payment missing from the list is still sent with only its id.
func requestFor(e *env, id string) (approval.Request, error) {
	id = strings.TrimSpace(id)
	req := approval.Request{PaymentID: id, Actor: "adminctl"}
	p, err := e.payment(id)
	if err != nil {
		return req, fmt.Errorf("list payments: %w", err)
	}
	if p != nil {
		req.UserID = p.UserID.String()
		req.UserEmail = p.UserEmail
		req.CurrentStatus = p.EffectiveStatus()
	}
	return req, nil
}

type paymentsWatchCmd struct {
	Interval time.Duration `help:"Poll interval." default:"20s"`
}

func (c *paymentsWatchCmd) Run(e *env) error {
	fetch := func(ctx context.Context) ([]models.Payment, error) {
		return e.Client.ListPayments(ctx, e.Token)
	}
	var (
		mu   sync.Mutex
		last map[string]string
	)
	p := poll.New("adminctl-payments", c.Interval, fetch, e.Log,
		poll.WithTimeout[[]models.Payment](e.Timeout),
		poll.OnUpdate(func(s poll.Snapshot[[]models.Payment]) {
			mu.Lock()
			last = printChanges(last, s)
			mu.Unlock()
		}),
	)
	if _, err := p.FetchNow(e.Ctx); err != nil {
		return fmt.Errorf("list payments: %w", err)
	}
	p.Start(e.Ctx)
	<-e.Ctx.Done()
	p.Stop()
	return nil
}

// printChanges prints rows whose status differs from prev and returns the
// new status map. The first snapshot prints the pending count.
func printChanges(prev map[string]string, s poll.Snapshot[[]models.Payment]) map[string]string {
	next := make(map[string]string, len(s.Value))
	pending := 0
	for _, p := range s.Value {
		id := p.ID.String()
		st := p.EffectiveStatus()
		next[id] = st
		if st == models.PaymentPending {
			pending++
		}
		if prev == nil {
			continue
		}
		if old, ok := prev[id]; !ok {
			fmt.Printf("%s  new payment %s (%s, %s)\n", s.At.Format("15:04:05"), id, format.Money(p.Amount), st)
		} else if old != st {
			fmt.Printf("%s  payment %s %s -> %s\n", s.At.Format("15:04:05"), id, old, st)
		}
	}
	if prev == nil {
		fmt.Printf("%s  %d payments, %d pending\n", s.At.Format("15:04:05"), len(s.Value), pending)
	}
	return next
}
