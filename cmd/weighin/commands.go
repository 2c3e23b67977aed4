package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/weighin/weighin-go/api"
	"github.com/weighin/weighin-go/internal/utils"
)

func newApp(client *api.Client) *cli.App {
	return &cli.App{
		Name:  "weighin",
		Usage: "track your weight and keep an eye on your friends",
		Commands: []*cli.Command{
			loginCommand(client),
			registerCommand(client),
			logoutCommand(client),
			whoamiCommand(client),
			profileCommand(client),
			avatarCommand(client),
			weightCommand(client),
			usersCommand(client),
		},
	}
}

func loginCommand(client *api.Client) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "log in with email and password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
		},
		Action: func(c *cli.Context) error {
			resp, err := client.Login(c.Context, c.String("email"), c.String("password"))
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (%s)\n", resp.User.Email, resp.User.ID)
			return nil
		},
	}
}

func registerCommand(client *api.Client) *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create a new account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
		},
		Action: func(c *cli.Context) error {
			resp, err := client.Register(c.Context, c.String("email"), c.String("password"))
			if err != nil {
				return err
			}
			fmt.Println(resp.Message)
			fmt.Println("Run 'weighin login' to sign in.")
			return nil
		},
	}
}

func logoutCommand(client *api.Client) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "forget the stored session",
		Action: func(c *cli.Context) error {
			if err := client.Logout(c.Context); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func whoamiCommand(client *api.Client) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the current session",
		Action: func(c *cli.Context) error {
			sess := client.Session().Current()
			if sess.IsZero() {
				fmt.Println("Not logged in.")
				return nil
			}
			fmt.Printf("User ID: %s\n", sess.UserID)
			if expiry, ok := sess.TokenExpiry(); ok {
				if time.Now().After(expiry) {
					fmt.Printf("Access token expired at %s - log in again.\n", expiry.Format(time.RFC3339))
				} else {
					fmt.Printf("Access token valid until %s\n", expiry.Format(time.RFC3339))
				}
			}
			return nil
		},
	}
}

func profileCommand(client *api.Client) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "show or update a profile",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "show a profile (defaults to your own)",
				ArgsUsage: "[user-id]",
				Action: func(c *cli.Context) error {
					p, err := client.GetProfile(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					printProfile(p)
					return nil
				},
			},
			{
				Name:  "update",
				Usage: "update your username or full name",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username"},
					&cli.StringFlag{Name: "full-name"},
				},
				Action: func(c *cli.Context) error {
					var update api.ProfileUpdate
					if c.IsSet("username") {
						update.Username = utils.Ptr(c.String("username"))
					}
					if c.IsSet("full-name") {
						update.FullName = utils.Ptr(c.String("full-name"))
					}
					p, err := client.UpdateProfile(c.Context, client.Session().UserID(), update)
					if err != nil {
						return err
					}
					printProfile(p)
					return nil
				},
			},
		},
	}
}

func avatarCommand(client *api.Client) *cli.Command {
	return &cli.Command{
		Name:      "avatar",
		Usage:     "upload a new avatar image",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("an image file is required", 1)
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			resp, err := client.UploadAvatar(c.Context, client.Session().UserID(), path, f)
			if err != nil {
				return err
			}
			fmt.Printf("Avatar updated: %s\n", resp.AvatarURL)
			return nil
		},
	}
}

func weightCommand(client *api.Client) *cli.Command {
	return &cli.Command{
		Name:  "weight",
		Usage: "log and review weight measurements",
		Subcommands: []*cli.Command{
			{
				Name:      "log",
				Usage:     "record a measurement in kilograms",
				ArgsUsage: "<kg>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Usage: "calendar date YYYY-MM-DD (default today)"},
				},
				Action: func(c *cli.Context) error {
					weight, err := strconv.ParseFloat(c.Args().First(), 64)
					if err != nil {
						return api.ErrInvalidWeight
					}
					date, err := dateFlag(c, "date")
					if err != nil {
						return err
					}
					log, err := client.LogWeight(c.Context, weight, date)
					if err != nil {
						return err
					}
					fmt.Printf("Logged %.1f kg on %s\n", log.Weight, log.LogDate)
					return nil
				},
			},
			{
				Name:      "history",
				Usage:     "show measurements (defaults to your own, last 30 days)",
				ArgsUsage: "[user-id]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Usage: "start date YYYY-MM-DD"},
					&cli.StringFlag{Name: "end", Usage: "end date YYYY-MM-DD"},
					&cli.IntFlag{Name: "days", Value: 30, Usage: "trailing window when no range is given"},
				},
				Action: func(c *cli.Context) error {
					userID := c.Args().First()

					var logs []api.WeightLog
					var err error
					if c.IsSet("start") || c.IsSet("end") {
						var start, end *api.Date
						if start, err = dateFlag(c, "start"); err != nil {
							return err
						}
						if end, err = dateFlag(c, "end"); err != nil {
							return err
						}
						logs, err = client.GetWeightLogs(c.Context, userID, start, end)
					} else {
						logs, err = client.GetRecentWeightLogs(c.Context, userID, c.Int("days"))
					}
					if err != nil {
						return err
					}

					api.SortLogsByDate(logs)
					if len(logs) == 0 {
						fmt.Println("No measurements recorded.")
						return nil
					}
					for _, log := range logs {
						fmt.Printf("%s  %6.1f kg\n", log.LogDate, log.Weight)
					}
					return nil
				},
			},
		},
	}
}

func usersCommand(client *api.Client) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "list everyone and their weigh-in for a date",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "calendar date YYYY-MM-DD (default today)"},
		},
		Action: func(c *cli.Context) error {
			date, err := dateFlag(c, "date")
			if err != nil {
				return err
			}
			users, err := client.GetUsers(c.Context, date)
			if err != nil {
				return err
			}
			for _, u := range users {
				weighIn := "-"
				if len(u.WeightLogs) > 0 {
					weighIn = fmt.Sprintf("%.1f kg", u.WeightLogs[0].Weight)
				}
				fmt.Printf("%-20s %s\n", u.Username, weighIn)
			}
			return nil
		},
	}
}

func dateFlag(c *cli.Context, name string) (*api.Date, error) {
	if !c.IsSet(name) {
		return nil, nil
	}
	d, err := api.ParseDate(c.String(name))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func printProfile(p *api.Profile) {
	fmt.Printf("ID:        %s\n", p.ID)
	fmt.Printf("Username:  %s\n", p.Username)
	fmt.Printf("Full name: %s\n", p.FullName)
	fmt.Printf("Email:     %s\n", p.Email)
	if p.AvatarURL != "" {
		fmt.Printf("Avatar:    %s\n", p.AvatarURL)
	}
}
