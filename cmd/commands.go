package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ochronus/gogett/gett"
	"github.com/ochronus/gogett/internal/download"
	"github.com/ochronus/gogett/internal/utils"
)

const timeLayout = "2006-01-02 15:04"

func (c *cli) sharesCmd() *cobra.Command {
	var limit, skip int

	cmd := &cobra.Command{
		Use:   "shares",
		Short: "List your shares",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container(cmd)
			if err != nil {
				return err
			}

			shares, err := container.GettClient.GetSharesList(cmd.Context(), gett.WithLimit(limit), gett.WithSkip(skip))
			if err != nil {
				return fmt.Errorf("failed to list shares: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTITLE\tFILES\tCREATED\tURL")
			for _, s := range shares {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", s.Name, s.Title, len(s.Files), formatTime(s.Created), s.GettURL)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of shares to list")
	cmd.Flags().IntVar(&skip, "skip", 0, "Number of shares to skip")

	return cmd
}

func (c *cli) shareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share <sharename>",
		Short: "Show a share and its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container(cmd)
			if err != nil {
				return err
			}

			share, err := container.GettClient.GetShare(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get share %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", share, share.Name)
			fmt.Fprintf(out, "Created: %s\n", formatTime(share.Created))
			fmt.Fprintf(out, "URL:     %s\n\n", share.GettURL)
			return printFiles(out, share.Files)
		},
	}
}

func (c *cli) fileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "file <sharename> <fileid>",
		Short: "Show a single file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container(cmd)
			if err != nil {
				return err
			}

			f, err := getFile(cmd, container.GettClient, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:      %s\n", f.Filename)
			fmt.Fprintf(out, "Share:     %s\n", f.ShareName)
			fmt.Fprintf(out, "ID:        %s\n", f.ID)
			fmt.Fprintf(out, "Size:      %s\n", utils.HumanSize(f.Size))
			fmt.Fprintf(out, "State:     %s\n", f.ReadyState)
			fmt.Fprintf(out, "Downloads: %d\n", f.Downloads)
			fmt.Fprintf(out, "Created:   %s\n", formatTime(f.Created))
			fmt.Fprintf(out, "URL:       %s\n", f.GettURL)
			fmt.Fprintf(out, "Download:  %s\n", f.DownloadURL)
			return nil
		},
	}
}

func (c *cli) catCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <sharename> <fileid>",
		Short: "Write the content of a file to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container(cmd)
			if err != nil {
				return err
			}

			f, err := getFile(cmd, container.GettClient, args)
			if err != nil {
				return err
			}

			if _, err := container.GettClient.Download(cmd.Context(), f, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("failed to download %s: %w", f, err)
			}
			return nil
		},
	}
}

func (c *cli) uploadCmd() *cobra.Command {
	var shareName, title string

	cmd := &cobra.Command{
		Use:   "upload <path>...",
		Short: "Upload files, into a new share unless --share is given",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container(cmd)
			if err != nil {
				return err
			}

			target := shareName
			for _, path := range args {
				opts := []gett.UploadOption{gett.WithTitle(title)}
				if target != "" {
					opts = append(opts, gett.WithShare(target))
				}

				f, err := uploadPath(cmd, container.GettClient, path, opts)
				if err != nil {
					return err
				}
				// The remaining files go into the share created for the first one.
				target = f.ShareName

				container.Logger.Infof("%s: uploaded %s", f, utils.HumanSize(f.Size))
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", f.Filename, f.GettURL)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&shareName, "share", "s", "", "Upload into an existing share")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Title of the share created for the upload")

	return cmd
}

func uploadPath(cmd *cobra.Command, client gett.ClientAPI, path string, opts []gett.UploadOption) (*gett.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	f, err := client.UploadReader(cmd.Context(), filepath.Base(path), file, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return f, nil
}

func (c *cli) downloadCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download <sharename>",
		Short: "Download every file of a share",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container(cmd)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = container.Config.DownloadDirectory
			}

			share, err := container.GettClient.GetShare(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get share %s: %w", args[0], err)
			}

			manager := download.NewManager(container.Config, container.Logger, container.GettClient)
			if err := manager.StartWithContext(cmd.Context()); err != nil {
				return fmt.Errorf("failed to start download manager: %w", err)
			}
			defer manager.Stop()

			result, err := manager.DownloadShare(cmd.Context(), share, dir)
			if result != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d downloaded, %d skipped, %d failed\n", result.Dir,
					result.Count(download.DownloadStatusSuccess),
					result.Count(download.DownloadStatusSkipped),
					result.Count(download.DownloadStatusFailed))
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to download into (default: download_directory)")

	return cmd
}

func (c *cli) createShareCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "create-share",
		Short: "Create an empty share",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container(cmd)
			if err != nil {
				return err
			}

			share, err := container.GettClient.CreateShare(cmd.Context(), title)
			if err != nil {
				return fmt.Errorf("failed to create share: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", share.Name, share.GettURL)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Share title")

	return cmd
}

func (c *cli) destroyShareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "destroy-share <sharename>",
		Short: "Delete a share and all its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container(cmd)
			if err != nil {
				return err
			}

			if err := container.GettClient.DestroyShare(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to destroy share %s: %w", args[0], err)
			}
			container.Logger.Infof("[%s]: destroyed", args[0])
			return nil
		},
	}
}

func (c *cli) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <sharename> <fileid>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container(cmd)
			if err != nil {
				return err
			}

			f, err := getFile(cmd, container.GettClient, args)
			if err != nil {
				return err
			}
			if err := container.GettClient.DestroyFile(cmd.Context(), f); err != nil {
				return fmt.Errorf("failed to delete %s: %w", f, err)
			}
			container.Logger.Infof("%s: deleted", f)
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in account and its storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container(cmd)
			if err != nil {
				return err
			}

			user, err := container.GettClient.Me(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get account: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", user.FullName, user.Email)
			fmt.Fprintf(out, "Storage: %s used of %s, %s free\n",
				utils.HumanSize(user.Storage.Used),
				utils.HumanSize(user.Storage.Limit+user.Storage.Extra),
				utils.HumanSize(user.Storage.Free()))
			return nil
		},
	}
}

func getFile(cmd *cobra.Command, client gett.ClientAPI, args []string) (*gett.File, error) {
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, fmt.Errorf("file id must be a number: %s", args[1])
	}

	f, err := client.GetFile(cmd.Context(), args[0], index)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s/%s: %w", args[0], args[1], err)
	}
	return f, nil
}

func printFiles(out io.Writer, files []gett.File) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tSTATE\tDOWNLOADS")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", f.ID, f.Filename, utils.HumanSize(f.Size), f.ReadyState, f.Downloads)
	}
	return w.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}
