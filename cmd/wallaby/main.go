package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wallaby-market/wallaby/internal/business"
	"github.com/wallaby-market/wallaby/internal/forms"
	"github.com/wallaby-market/wallaby/internal/remote"
	"github.com/wallaby-market/wallaby/internal/session"
	"github.com/wallaby-market/wallaby/pkg/client"
	"go.uber.org/zap"
)

// version is overridden by goreleaser via -ldflags "-X main.version=...".
var version = "dev"

var (
	serviceURL string
	cfgFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wallaby",
	Short: "Wallaby local marketplace CLI",
	Long: `wallaby is the command-line client for the Wallaby local marketplace.

It signs you up, logs you in, walks you through business onboarding, and
lists the shops and fairs on the market map. The session persists in
~/.wallaby/session between runs.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".wallaby"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if serviceURL == "" {
			serviceURL = viper.GetString("service_url")
		}
		if serviceURL == "" {
			serviceURL = "http://localhost:8080"
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.wallaby/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service", "", "Wallaby service URL (default http://localhost:8080)")

	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(markersCmd)
	rootCmd.AddCommand(versionCmd)
}

// newClient builds the SDK client with the persisted session attached and
// wraps it for the session controller and forms.
func newClient() (*client.Client, *remote.Backend, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil, err
	}
	c, err := client.New(serviceURL, client.WithSessionFile(filepath.Join(home, ".wallaby", "session")))
	if err != nil {
		return nil, nil, err
	}
	return c, remote.New(c), nil
}

// newSession starts a session controller over the wrapped client and waits
// for the restored session, if any, to settle out of the loading state.
func newSession(b *remote.Backend) (*session.Controller, error) {
	ctrl := session.NewController(b, b.Profiles(), zap.NewNop())
	if err := ctrl.Start(); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(10 * time.Second)
	for ctrl.Snapshot().State == session.StateLoading {
		if time.Now().After(deadline) {
			ctrl.Close()
			return nil, errors.New("timed out waiting for session to load")
		}
		time.Sleep(25 * time.Millisecond)
	}
	return ctrl, nil
}

func printState(snap session.Snapshot) {
	fmt.Printf("State:   %s\n", snap.State)
	if snap.Identity != nil {
		fmt.Printf("Email:   %s\n", snap.Identity.Email)
		fmt.Printf("User ID: %s\n", snap.Identity.ID)
	}
	if snap.Profile != nil {
		if snap.Profile.FirstName != "" {
			fmt.Printf("Name:    %s\n", snap.Profile.FirstName)
		}
		if ut, set := snap.Profile.Classification.UserType(); set {
			fmt.Printf("Role:    %s\n", ut)
		}
	}
}

// ── signup ───────────────────────────────────────────────────────────────────

var (
	signupFirstName string
	signupEmail     string
	signupPassword  string
	signupCity      string
	signupState     string
	signupImage     string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a Wallaby account",
	Long: `Signup creates a new account and signs you in.

All fields except --image are required:

  wallaby signup --first-name Asha --email asha@example.com \
      --password secret123 --city Lucknow --state "Uttar Pradesh"`,
	RunE: runSignup,
}

func init() {
	signupCmd.Flags().StringVar(&signupFirstName, "first-name", "", "First name")
	signupCmd.Flags().StringVar(&signupEmail, "email", "", "Email address")
	signupCmd.Flags().StringVar(&signupPassword, "password", "", "Password (at least 6 characters)")
	signupCmd.Flags().StringVar(&signupCity, "city", "", "City")
	signupCmd.Flags().StringVar(&signupState, "state", "", "State")
	signupCmd.Flags().StringVar(&signupImage, "image", "", "Profile image file (optional)")
}

func runSignup(cmd *cobra.Command, args []string) error {
	_, b, err := newClient()
	if err != nil {
		return err
	}
	ctrl, err := newSession(b)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	var image []byte
	if signupImage != "" {
		image, err = os.ReadFile(signupImage)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
	}

	form := forms.NewSignUpForm(b, b.Profiles(), b, nil, ctrl.OnSignUpSuccess, zap.NewNop())
	err = form.Submit(context.Background(), forms.SignUpInput{
		FirstName:    signupFirstName,
		Email:        signupEmail,
		Password:     signupPassword,
		City:         signupCity,
		State:        signupState,
		ProfileImage: image,
	})
	if err != nil {
		return err
	}

	fmt.Println("Account created. Run 'wallaby onboard' to finish setting up.")
	printState(ctrl.Snapshot())
	return nil
}

// ── login / logout ───────────────────────────────────────────────────────────

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to an existing account",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, b, err := newClient()
		if err != nil {
			return err
		}
		ctrl, err := newSession(b)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		form := forms.NewLoginForm(b, b.Profiles(), ctrl.OnLoginSuccess, zap.NewNop())
		if err := form.Submit(context.Background(), loginEmail, loginPassword); err != nil {
			return err
		}

		snap := ctrl.Snapshot()
		fmt.Println("Signed in.")
		printState(snap)
		if snap.State == session.StateIncomplete {
			fmt.Println("\nYour account setup is incomplete. Run 'wallaby onboard' to finish.")
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password")
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := newClient()
		if err != nil {
			return err
		}
		if err := c.SignOut(context.Background()); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

// ── whoami ───────────────────────────────────────────────────────────────────

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account and its onboarding state",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, b, err := newClient()
		if err != nil {
			return err
		}
		ctrl, err := newSession(b)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		snap := ctrl.Snapshot()
		if snap.State == session.StateAnonymous {
			fmt.Println("Not signed in.")
			return nil
		}
		printState(snap)
		if snap.ShowBusinessDashboard() {
			fmt.Println("Card:    business dashboard")
		} else if snap.State == session.StateComplete {
			fmt.Println("Card:    seller sign-up")
		}
		return nil
	},
}

// ── onboard ──────────────────────────────────────────────────────────────────

var (
	onboardBuyer    bool
	onboardName     string
	onboardAbout    string
	onboardLocation string
	onboardImage    string
	onboardCover    string
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Finish account setup as a seller or a buyer",
	Long: `Onboard completes a fresh account.

The default path registers a business:

  wallaby onboard --name "Sharma's Sweets" --about "Famous sweet shop" \
      --location "Hazratganj Market" --image shop.jpg

Buyers skip the storefront entirely:

  wallaby onboard --buyer`,
	RunE: runOnboard,
}

func init() {
	onboardCmd.Flags().BoolVar(&onboardBuyer, "buyer", false, "Onboard as a buyer instead of a seller")
	onboardCmd.Flags().StringVar(&onboardName, "name", "", "Business name")
	onboardCmd.Flags().StringVar(&onboardAbout, "about", "", "About the business")
	onboardCmd.Flags().StringVar(&onboardLocation, "location", "", "Business location")
	onboardCmd.Flags().StringVar(&onboardImage, "image", "", "Business profile image file (optional)")
	onboardCmd.Flags().StringVar(&onboardCover, "cover", "", "Business cover image file (optional)")
}

func runOnboard(cmd *cobra.Command, args []string) error {
	_, b, err := newClient()
	if err != nil {
		return err
	}
	ctrl, err := newSession(b)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.OpenOnboarding(); err != nil {
		if errors.Is(err, session.ErrNotOnboarding) {
			snap := ctrl.Snapshot()
			if snap.State == session.StateAnonymous {
				return errors.New("not signed in; run 'wallaby login' first")
			}
			return errors.New("account setup is already complete")
		}
		return err
	}
	ident := b.Identity()

	var completionErr error
	form := forms.NewBusinessProfileForm(b.Profiles(), b.Businesses(), b,
		func(bp *business.Profile) { completionErr = ctrl.OnBusinessComplete(bp) },
		func() { completionErr = ctrl.OnCustomerComplete() },
		zap.NewNop())

	ctx := context.Background()
	if onboardBuyer {
		if err := form.HereToBuy(ctx, ident.ID); err != nil {
			return err
		}
		fmt.Println("Welcome! You're all set to browse the market.")
	} else {
		var image, cover []byte
		if onboardImage != "" {
			if image, err = os.ReadFile(onboardImage); err != nil {
				return fmt.Errorf("read image: %w", err)
			}
		}
		if onboardCover != "" {
			if cover, err = os.ReadFile(onboardCover); err != nil {
				return fmt.Errorf("read cover: %w", err)
			}
		}
		err = form.Continue(ctx, ident.ID, forms.BusinessInput{
			BusinessName:  onboardName,
			AboutBusiness: onboardAbout,
			Location:      onboardLocation,
			ProfileImage:  image,
			CoverImage:    cover,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Business %q registered.\n", onboardName)
	}
	if completionErr != nil {
		return completionErr
	}
	printState(ctrl.Snapshot())
	return nil
}

// ── markers ──────────────────────────────────────────────────────────────────

var markersCmd = &cobra.Command{
	Use:   "markers",
	Short: "List the shops and fairs on the market map",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := newClient()
		if err != nil {
			return err
		}
		res, err := c.Markers(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("Map center: %.4f, %.4f (zoom %d)\n\n", res.Center.Lat, res.Center.Lng, res.Center.Zoom)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tKIND\tCATEGORY\tSTATUS\tRATING")
		for _, m := range res.Markers {
			status := "closed"
			if m.POI.IsOpen {
				status = "open"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\n", m.POI.Name, m.POI.Kind, m.POI.Category, status, m.POI.Rating)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Println()
		for kind, n := range res.CountsByKind {
			fmt.Printf("%s: %d  ", kind, n)
		}
		fmt.Println()
		return nil
	},
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the wallaby CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wallaby %s\n", version)
	},
}
