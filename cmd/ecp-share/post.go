package main

import (
	"bufio"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"html"
	"io"
	"mime"
	"math/big"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stake-plus/ecp-share/src/chain"
	"github.com/stake-plus/ecp-share/src/comments"
	"github.com/stake-plus/ecp-share/src/config"
	"github.com/stake-plus/ecp-share/src/editor"
	"github.com/stake-plus/ecp-share/src/form"
	"github.com/stake-plus/ecp-share/src/indexer"
	"github.com/stake-plus/ecp-share/src/pinata"
	"github.com/stake-plus/ecp-share/src/prefill"
	"github.com/stake-plus/ecp-share/src/signer"
	"github.com/stake-plus/ecp-share/src/submit"
	"github.com/stake-plus/ecp-share/src/uploads"
)

const privateKeyEnv = "ECP_PRIVATE_KEY"

var (
	postDraft     draftFlags
	postLink      string
	postFiles     []string
	postBroker    string
	postRPCs      []string
	postFeeToken  string
	postFeeAmount string
	postValue     string
	postYes       bool
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Sign and post a comment on-chain",
	Long: "Builds a comment from a share link and/or flags, uploads attachments " +
		"through the share server, has it signed by the app signer and posts " +
		"it with your key. The key is read from " + privateKeyEnv + " or " +
		"prompted for.",
	Args: cobra.NoArgs,
	RunE: runPost,
}

func init() {
	postDraft.register(postCmd)
	postCmd.Flags().StringVarP(&postLink, "link", "l", "",
		"Share link to start from; flags override its fields.")
	postCmd.Flags().StringSliceVarP(&postFiles, "file", "f", nil,
		"Image to attach (repeatable).")
	postCmd.Flags().StringVar(&postBroker, "broker", "http://localhost:3000",
		"Share server issuing upload URLs; also the fallback target URI.")
	postCmd.Flags().StringSliceVar(&postRPCs, "rpc", nil,
		"RPC endpoints, one per chain (default RPC_URL).")
	postCmd.Flags().StringVar(&postFeeToken, "fee-token", "",
		"ERC20 token the channel hook charges; approved before posting.")
	postCmd.Flags().StringVar(&postFeeAmount, "fee-amount", "",
		"Amount of --fee-token, in base units.")
	postCmd.Flags().StringVar(&postValue, "value", "",
		"Wei sent with the comment, e.g. a native hook fee.")
	postCmd.Flags().BoolVarP(&postYes, "yes", "y", false,
		"Send transactions without asking.")
}

func runPost(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.MustLoad()
	out := cmd.OutOrStdout()

	opts, err := postOptions()
	if err != nil {
		return err
	}
	st := form.New()
	if postLink != "" {
		u, err := url.Parse(postLink)
		if err != nil {
			return fmt.Errorf("--link: %w", err)
		}
		st.ApplyPrefill(prefill.Parse(u.Query()))
	}
	applyDraftFlags(st, postDraft)
	if link, ok := devShareLink(st, postBroker, postDraft.content); ok {
		fmt.Fprintln(out, "Development mode: nothing posted. Share URL:")
		fmt.Fprintln(out, link)
		return nil
	}
	key, err := loadKey()
	if err != nil {
		return err
	}

	dir := indexer.NewDirectory(indexer.NewClient(cfg.IndexerURL, nil, logger), cfg.ChainID, logger)
	if list, err := dir.Load(ctx); err == nil {
		st.ChannelsLoaded(list)
	}
	if dups := st.DuplicateKeys(); len(dups) > 0 {
		fmt.Fprintf(out, "warning: duplicate metadata keys at rows %v\n", dups)
	}

	ed := editor.New()
	st.AttachEditor(ed)
	if postDraft.content != "" {
		ed.SetContent(html.EscapeString(postDraft.content))
	}
	if err := attachFiles(ed, postFiles, out); err != nil {
		return err
	}

	rpcs := postRPCs
	if len(rpcs) == 0 {
		rpcs = []string{cfg.RPCURL}
	}
	wallet, err := chain.NewKeyedWallet(ctx, key, rpcs, confirmWrite, logger)
	if err != nil {
		return err
	}
	defer wallet.Close()

	uploader := uploads.New(uploads.BrokerURLGenerator(postBroker, nil),
		pinata.NewClient("", pinata.WithLogger(logger)), cfg.PinataGatewayURL, logger)
	sub := submit.New(submit.Config{
		ChainID:        cfg.ChainID,
		CommentManager: cfg.CommentManager,
		AppSigner:      cfg.AppSigner,
		PermalinkBase:  cfg.PermalinkBaseURL,
		PageURL:        postBroker,
	}, signer.NewClient(cfg.SignerURL, nil, logger), uploader, wallet, wallet, logger)

	res, err := sub.Submit(ctx, st, opts)
	if failed := ed.Failed(); len(failed) > 0 {
		fmt.Fprintf(out, "warning: %d attachment(s) failed to upload\n", len(failed))
	}
	if err != nil {
		var cerr *comments.Error
		if errors.As(err, &cerr) && cerr.TxHash != "" {
			fmt.Fprintf(out, "transaction: %s\n", cerr.TxHash)
		}
		logger.Printf("post: %v", err)
		return errors.New(comments.UserMessage(err))
	}

	fmt.Fprintln(out, "Comment posted successfully!")
	fmt.Fprintf(out, "transaction: %s\ncomment:     %s\n", res.TxHash.Hex(), res.CommentID.Hex())
	if res.Permalink != "" {
		fmt.Fprintf(out, "permalink:   %s\n", res.Permalink)
	}
	return nil
}

// devShareLink returns the share URL reproducing the draft when the link
// asked for development mode. content overrides the link's content.
func devShareLink(st *form.State, base, content string) (string, bool) {
	if !st.DevMode() {
		return "", false
	}
	d := st.Draft()
	if content != "" {
		d.Content = content
	}
	return prefill.ShareURL(strings.TrimRight(base, "/")+"/", d), true
}

func applyDraftFlags(st *form.State, d draftFlags) {
	if d.targetURI != "" {
		st.SetTargetURI(d.targetURI)
	}
	if d.metadata != "" {
		st.SetMetadata(prefill.ParseMetadata(d.metadata))
	}
	if d.channelID != "" {
		st.ApplyPrefill(prefill.Prefill{ChannelID: d.channelID})
	}
}

func postOptions() (submit.Options, error) {
	var opts submit.Options
	if postValue != "" {
		v, ok := new(big.Int).SetString(postValue, 10)
		if !ok || v.Sign() < 0 {
			return opts, fmt.Errorf("--value: %q is not an amount in wei", postValue)
		}
		opts.Value = v
	}
	if postFeeToken == "" && postFeeAmount == "" {
		return opts, nil
	}
	if !common.IsHexAddress(postFeeToken) {
		return opts, fmt.Errorf("--fee-token: %q is not an address", postFeeToken)
	}
	amount, ok := new(big.Int).SetString(postFeeAmount, 10)
	if !ok || amount.Sign() <= 0 {
		return opts, fmt.Errorf("--fee-amount: %q is not a positive amount", postFeeAmount)
	}
	opts.Asset = &chain.ContractAsset{
		Type:    chain.AssetERC20,
		Address: common.HexToAddress(postFeeToken),
		Amount:  amount,
	}
	return opts, nil
}

func attachFiles(ed *editor.Editor, paths []string, out io.Writer) error {
	if len(paths) == 0 {
		return nil
	}
	files := make([]editor.File, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("--file: %w", err)
		}
		files = append(files, editor.File{Name: filepath.Base(p), MimeType: detectMimeType(p, b), Data: b})
	}
	_, byMime, bySize := ed.AddFiles(files...)
	if byMime > 0 || bySize > 0 {
		fmt.Fprintf(out, "Some files were removed: %d unsupported type, %d too large (max %d MB)\n",
			byMime, bySize, pinata.MaxFileSize>>20)
	}
	return nil
}

func loadKey() (*ecdsa.PrivateKey, error) {
	raw := strings.TrimSpace(os.Getenv(privateKeyEnv))
	if raw == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, fmt.Errorf("%s is not set", privateKeyEnv)
		}
		fmt.Fprint(os.Stderr, "Private key: ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		raw = strings.TrimSpace(string(b))
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, comments.Wrap(comments.KindNoWallet, err, "invalid private key")
	}
	return key, nil
}

// confirmWrite is the terminal version of the wallet's transaction prompt.
func confirmWrite(req chain.WriteRequest) bool {
	if postYes {
		return true
	}
	value := "0"
	if req.Value != nil {
		value = req.Value.String()
	}
	fmt.Fprintf(os.Stderr, "Send %s to %s (value %s wei)? [y/N] ", req.Method, req.Address.Hex(), value)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func detectMimeType(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = t[:i]
		}
		return t
	}
	return http.DetectContentType(data)
}
