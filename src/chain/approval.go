package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stake-plus/ecp-share/src/comments"
)

// AssetType classifies a token a channel hook charges in.
type AssetType string

const (
	AssetUnknown AssetType = "unknown"
	AssetERC20   AssetType = "erc20"
	AssetERC721  AssetType = "erc721"
	AssetERC1155 AssetType = "erc1155"
)

// ContractAsset is a token amount a hook will pull from the author.
type ContractAsset struct {
	Type    AssetType
	Address common.Address
	Amount  *big.Int
}

// AssetTransfer is a hook asset requirement for one author.
type AssetTransfer struct {
	Asset  ContractAsset
	Hook   common.Address
	Author common.Address
}

// PrepareContractAssetForTransfer makes sure the hook can pull the asset.
// ERC20 allowances are topped up only when insufficient; NFT assets are not
// supported.
func PrepareContractAssetForTransfer(ctx context.Context, t AssetTransfer, r Reader, w Wallet) error {
	switch t.Asset.Type {
	case AssetUnknown:
		return comments.Errorf(comments.KindUnsupportedAsset, "unknown token type")
	case AssetERC20:
		return prepareERC20(ctx, t, r, w)
	case AssetERC721, AssetERC1155:
		return comments.Errorf(comments.KindUnsupportedAsset, "ERC721 and ERC1155 are not supported")
	default:
		panic(fmt.Sprintf("chain: unhandled asset type %q", t.Asset.Type))
	}
}

func prepareERC20(ctx context.Context, t AssetTransfer, r Reader, w Wallet) error {
	if t.Asset.Amount == nil || t.Asset.Amount.Sign() < 0 {
		return comments.Errorf(comments.KindInvalid, "erc20 asset %s has no valid amount", t.Asset.Address.Hex())
	}
	out, err := r.ReadContract(ctx, t.Asset.Address, ERC20ABI, "allowance", t.Author, t.Hook)
	if err != nil {
		return fmt.Errorf("read allowance: %w", err)
	}
	if len(out) != 1 {
		return fmt.Errorf("read allowance: unexpected output count %d", len(out))
	}
	allowance, ok := out[0].(*big.Int)
	if !ok {
		return fmt.Errorf("read allowance: unexpected output type %T", out[0])
	}
	if t.Asset.Amount.Cmp(allowance) <= 0 {
		return nil
	}

	txHash, err := w.WriteContract(ctx, WriteRequest{
		Address: t.Asset.Address,
		ABI:     ERC20ABI,
		Method:  "approve",
		Args:    []any{t.Hook, t.Asset.Amount},
	})
	if err != nil {
		return err
	}
	if _, err := r.WaitForReceipt(ctx, txHash); err != nil {
		return fmt.Errorf("approve %s: %w", txHash.Hex(), err)
	}
	return nil
}
