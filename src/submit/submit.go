// Package submit runs a comment from the form to the chain: uploads, content
// checks, chain alignment, remote signing, the on-chain write and recovery of
// the new comment's identifier.
package submit

import (
	"context"
	"log"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/stake-plus/ecp-share/src/chain"
	"github.com/stake-plus/ecp-share/src/comments"
	"github.com/stake-plus/ecp-share/src/editor"
	"github.com/stake-plus/ecp-share/src/form"
	"github.com/stake-plus/ecp-share/src/signer"
	"github.com/stake-plus/ecp-share/src/uploads"
)

// Signer produces the app signature for a comment.
type Signer interface {
	Sign(ctx context.Context, req signer.Request) (*signer.Response, error)
}

// FileUploader uploads editor attachments, reporting each file on its own.
type FileUploader interface {
	UploadFiles(ctx context.Context, files []editor.File, cb uploads.Callbacks)
}

// Config is the chain side of a submission.
type Config struct {
	ChainID        uint64
	CommentManager common.Address
	AppSigner      common.Address
	PermalinkBase  string
	// PageURL stands in for the target URI when the draft has none.
	PageURL string
}

// Options are per-submission extras.
type Options struct {
	// Asset is transferred to the channel hook with the comment; it is
	// approved first when needed.
	Asset *chain.ContractAsset
	// Value is sent with postComment, typically the hook fee.
	Value *big.Int
}

// Result identifies the posted comment.
type Result struct {
	TxHash    common.Hash
	CommentID common.Hash
	Permalink string
}

// Submitter posts comments. It holds no per-submission state.
type Submitter struct {
	cfg      Config
	signer   Signer
	uploader FileUploader
	wallet   chain.Wallet
	reader   chain.Reader
	logger   *log.Logger
}

// New wires a submitter. uploader may be nil when attachments are not
// supported; pending files then stay pending.
func New(cfg Config, s Signer, uploader FileUploader, w chain.Wallet, r chain.Reader, logger *log.Logger) *Submitter {
	if logger == nil {
		logger = log.Default()
	}
	return &Submitter{cfg: cfg, signer: s, uploader: uploader, wallet: w, reader: r, logger: logger}
}

// Submit posts the comment drafted in st. Steps run strictly in order and the
// first failure aborts; completed steps are not rolled back. On success the
// draft is cleared. The form returns to idle whatever the outcome. A form in
// development mode is never posted.
func (s *Submitter) Submit(ctx context.Context, st *form.State, opts Options) (res *Result, err error) {
	st.SetPhase(form.PhasePosting)
	defer st.SetPhase(form.PhaseIdle)

	if st.DevMode() {
		return nil, comments.Errorf(comments.KindDevMode, "form is in development mode; share the link instead")
	}
	ed := st.Editor()
	if ed == nil {
		return nil, comments.Errorf(comments.KindEditorMissing, "editor not ready")
	}
	defer func() {
		if err != nil && comments.IsValidation(err) {
			ed.Focus()
		}
	}()

	s.uploadPending(ctx, ed)

	content := strings.TrimSpace(ed.Text())
	if content == "" {
		return nil, comments.Errorf(comments.KindEmptyContent, "comment content cannot be empty")
	}
	channelID := st.ChannelID()
	if channelID == "" {
		return nil, comments.Errorf(comments.KindNoChannel, "please select a channel")
	}

	if err := s.alignChain(ctx); err != nil {
		return nil, err
	}
	author, ok := s.wallet.Address()
	if !ok {
		return nil, comments.Errorf(comments.KindNoWallet, "no wallet address available")
	}

	metadata, err := comments.NormalizeMetadata(st.Metadata())
	if err != nil {
		return nil, err
	}

	targetURI := st.TargetURI()
	if targetURI == "" {
		targetURI = s.cfg.PageURL
	}
	signed, err := s.signer.Sign(ctx, signer.Request{
		Author:    author,
		Content:   content,
		ChannelID: channelID,
		Metadata:  metadata,
		TargetURI: targetURI,
	})
	if err != nil {
		return nil, err
	}
	if signed.Data.App != s.cfg.AppSigner {
		return nil, comments.Errorf(comments.KindSigner, "signed payload app %s does not match %s",
			signed.Data.App.Hex(), s.cfg.AppSigner.Hex())
	}
	data := chain.NewCreateComment(signed.Data)

	if opts.Asset != nil {
		if err := s.prepareAsset(ctx, st, author, *opts.Asset); err != nil {
			return nil, err
		}
	}

	precomputed, perr := chain.GetCommentID(ctx, s.reader, s.cfg.CommentManager, data)
	if perr != nil {
		s.logger.Printf("submit: getCommentId precompute failed: %v", perr)
	}

	txHash, err := chain.PostComment(ctx, s.wallet, s.cfg.CommentManager, data, signed.Signature, opts.Value)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("submit: posted %s", txHash.Hex())

	id, err := s.resolveID(ctx, txHash, precomputed, perr == nil)
	if err != nil {
		return nil, err
	}

	st.Reset()
	return &Result{TxHash: txHash, CommentID: id, Permalink: s.Permalink(id)}, nil
}

// Permalink returns the public page of comment id.
func (s *Submitter) Permalink(id common.Hash) string {
	if s.cfg.PermalinkBase == "" {
		return ""
	}
	return strings.TrimRight(s.cfg.PermalinkBase, "/") + "/" + id.Hex()
}

func (s *Submitter) uploadPending(ctx context.Context, ed *editor.Editor) {
	files := ed.FilesForUpload()
	if len(files) == 0 || s.uploader == nil {
		return
	}
	s.uploader.UploadFiles(ctx, files, uploads.Callbacks{
		OnSuccess: ed.SetFileAsUploaded,
		OnError: func(id string, err error) {
			ed.SetFileUploadAsFailed(id)
		},
	})
}

// alignChain switches once and checks again.
func (s *Submitter) alignChain(ctx context.Context) error {
	if s.wallet.ChainID() == s.cfg.ChainID {
		return nil
	}
	if err := s.wallet.SwitchChain(ctx, s.cfg.ChainID); err != nil {
		return err
	}
	if got := s.wallet.ChainID(); got != s.cfg.ChainID {
		return comments.Errorf(comments.KindWrongChain, "wallet is on chain %d, want %d", got, s.cfg.ChainID)
	}
	return nil
}

func (s *Submitter) prepareAsset(ctx context.Context, st *form.State, author common.Address, asset chain.ContractAsset) error {
	ch, ok := st.Channel()
	if !ok {
		return comments.Errorf(comments.KindNoChannel, "channel %s is not loaded", st.ChannelID())
	}
	hook, ok := ch.HookAddress()
	if !ok {
		return comments.Errorf(comments.KindUnsupportedAsset, "channel %s has no hook to receive %s", ch.Name, asset.Type)
	}
	return chain.PrepareContractAssetForTransfer(ctx, chain.AssetTransfer{Asset: asset, Hook: hook, Author: author}, s.reader, s.wallet)
}

// resolveID recovers the new comment's identifier: the decoded CommentAdded
// event, then the raw log scan, then the identifier read before the write.
func (s *Submitter) resolveID(ctx context.Context, txHash, precomputed common.Hash, havePrecomputed bool) (common.Hash, error) {
	receipt, id, err := chain.WaitForComment(ctx, s.reader, s.cfg.CommentManager, txHash)
	if err != nil {
		s.logger.Printf("submit: confirmation of %s failed: %v", txHash.Hex(), err)
	}
	if id != nil {
		return *id, nil
	}
	if receipt != nil && receipt.Status != types.ReceiptStatusSuccessful {
		return common.Hash{}, &comments.Error{
			Kind:   comments.KindConfirmation,
			Msg:    "transaction reverted",
			TxHash: txHash.Hex(),
			Err:    err,
		}
	}
	if receipt != nil {
		if id := chain.ScanLogsForCommentID(receipt, s.cfg.CommentManager); id != nil {
			return *id, nil
		}
	}
	if havePrecomputed && precomputed != (common.Hash{}) {
		return precomputed, nil
	}
	return common.Hash{}, &comments.Error{
		Kind:   comments.KindIDUnresolved,
		Msg:    "comment id not found",
		TxHash: txHash.Hex(),
		Err:    err,
	}
}
