// Package calldata encodes ERC-20 calldata the same way the teacher's
// Blackhole.ensureApproval does, via go-ethereum's accounts/abi package,
// but only ever returns the encoded bytes — it never sends a transaction.
package calldata

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const erc20ApproveABI = `[{
	"constant": false,
	"inputs": [
		{"name": "spender", "type": "address"},
		{"name": "amount", "type": "uint256"}
	],
	"name": "approve",
	"outputs": [{"name": "", "type": "bool"}],
	"type": "function"
}]`

var parsedERC20ABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(erc20ApproveABI))
	if err != nil {
		panic(fmt.Sprintf("calldata: failed to parse erc20 approve ABI: %v", err))
	}
	parsedERC20ABI = parsed
}

// EncodeApprove packs approve(spender, amount) calldata. The token
// contract address is not part of it; the caller sets it as the
// transaction's To.
// Mirrors ensureApproval's ABI-pack step in the teacher without the
// ethclient.SendTransaction call that follows it there.
func EncodeApprove(spender string, amount *big.Int) (string, error) {
	if !common.IsHexAddress(spender) {
		return "", fmt.Errorf("calldata: invalid spender address %q", spender)
	}
	packed, err := parsedERC20ABI.Pack("approve", common.HexToAddress(spender), amount)
	if err != nil {
		return "", fmt.Errorf("calldata: failed to pack approve: %w", err)
	}
	return "0x" + common.Bytes2Hex(packed), nil
}
