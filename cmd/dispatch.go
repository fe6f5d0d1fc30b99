package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lifeflow/bloodlink/config"
	"github.com/lifeflow/bloodlink/core/dispatch"
	"github.com/lifeflow/bloodlink/core/model"
	"github.com/lifeflow/bloodlink/infra/logger"
	"github.com/lifeflow/bloodlink/infra/sms"
	"github.com/lifeflow/bloodlink/infra/store/sqlite"
)

var (
	dispatchGroup    string
	dispatchHospital string
	dispatchQuantity int
	dispatchUrgency  string
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Create a blood request and notify compatible donors",
	RunE:  dispatchRequest,
}

func init() {
	dispatchCmd.Flags().StringVar(&dispatchGroup, "group", "", "requested blood group (e.g. B-)")
	dispatchCmd.Flags().StringVar(&dispatchHospital, "hospital", "cli", "hospital identifier")
	dispatchCmd.Flags().IntVar(&dispatchQuantity, "quantity", 1, "units needed")
	dispatchCmd.Flags().StringVar(&dispatchUrgency, "urgency", "high", "urgency level")
	if err := dispatchCmd.MarkFlagRequired("group"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(dispatchCmd)
}

func dispatchRequest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New("dispatch-command")
	db, err := sqlite.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logg.Errorf("store close: %v", err)
		}
	}()

	var sender sms.Sender
	if cfg.SMS.URL != "" {
		sender = sms.NewGatewaySender(cfg.SMS)
	} else {
		logg.Warnf("no SMS gateway configured, messages are logged only")
		sender = sms.NewMockSender()
	}
	d, err := dispatch.New(sqlite.NewDonorStore(db), sqlite.NewTokenStore(db), sender, nil, nil, logg, cfg.Server.LinkBaseURL)
	if err != nil {
		return fmt.Errorf("dispatcher: %w", err)
	}

	group := model.NormalizeGroup(dispatchGroup)
	req := model.BloodRequest{
		ID:         uuid.NewString(),
		HospitalID: dispatchHospital,
		BloodGroup: group,
		Quantity:   dispatchQuantity,
		Urgency:    dispatchUrgency,
		Status:     model.StatusPending,
		CreatedAt:  time.Now(),
	}
	if err := sqlite.NewRequestStore(db).Create(ctx, req); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	result, err := d.Dispatch(ctx, req)
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	logg.Infof("request %s: notified %d/%d donors", req.ID, result.Delivered, result.TotalDonors)
	for donorID, derr := range result.Errors {
		logg.Warnf("donor %s: %v", donorID, derr)
	}
	return nil
}
