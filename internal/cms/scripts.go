package cms

import (
	"fmt"
	"strings"
)

// statusMarker prefixes the status line printed by every script
const statusMarker = "BXCONSOLE_STATUS:"

// bootstrap loads the CMS kernel without statistics or permission checks
const bootstrap = `
define('NO_KEEP_STATISTIC', true);
define('NOT_CHECK_PERMISSIONS', true);
define('NO_AGENT_STATISTIC', true);
define('BX_NO_ACCELERATOR_RESET', true);
$_SERVER['DOCUMENT_ROOT'] = %s;
$DOCUMENT_ROOT = $_SERVER['DOCUMENT_ROOT'];
require $_SERVER['DOCUMENT_ROOT'] . '/bitrix/modules/main/include/prolog_before.php';
`

// statusHelpers report the outcome of the body as one JSON line
const statusHelpers = `
function bxconsole_status($ok, $category = '', $message = '') {
	echo "\n" . %s . json_encode(['ok' => $ok, 'category' => $category, 'message' => $message]) . "\n";
}
function bxconsole_fail($category, $message = '') {
	bxconsole_status(false, $category, (string)$message);
	exit(1);
}
function bxconsole_exception_message() {
	global $APPLICATION;
	$ex = $APPLICATION->GetException();
	return $ex ? $ex->GetString() : '';
}
`

const checkAgentsBody = `
@set_time_limit(0);
@ignore_user_abort(true);
define('CHK_EVENT', true);
$agentManager = new \CAgent();
$agentManager->CheckAgents();
`

const checkEventsBody = `
@set_time_limit(0);
@ignore_user_abort(true);
define('CHK_EVENT', true);
define('BX_CRONTAB_SUPPORT', true);
define('BX_CRONTAB', true);
$eventManager = new \CEvent();
$eventManager->CheckEvents();
`

const setOptionBody = `
\Bitrix\Main\Config\Option::set(%s, %s, %s);
`

const loadBody = `
$code = %s;
if (\Bitrix\Main\ModuleManager::isModuleInstalled($code)) {
	bxconsole_fail('ModuleAlreadyInstalled');
}
require_once $_SERVER['DOCUMENT_ROOT'] . '/bitrix/modules/main/classes/general/update_client_partner.php';
$error = '';
if (!\CUpdateClientPartner::LoadModuleNoDemand($code, $error, 'Y', LANGUAGE_ID)) {
	bxconsole_fail('ModuleLoadFailed', $error);
}
if (!is_dir($_SERVER['DOCUMENT_ROOT'] . '/bitrix/modules/' . $code)) {
	bxconsole_fail('ModuleNotFound', 'module directory is missing after download');
}
`

const registerBody = `
$code = %s;
$module = \CModule::CreateModuleObject($code);
if (!$module) {
	bxconsole_fail('ModuleNotFound');
}
if ($module->IsInstalled()) {
	bxconsole_fail('ModuleAlreadyInstalled');
}
ob_start();
$module->DoInstall();
ob_end_clean();
if (!\Bitrix\Main\ModuleManager::isModuleInstalled($code)) {
	$message = bxconsole_exception_message();
	bxconsole_fail(stripos($message, 'depend') !== false ? 'DependencyMissing' : 'ModuleInstallFailed', $message);
}
`

const removeBody = `
$code = %s;
$module = \CModule::CreateModuleObject($code);
if (!$module) {
	bxconsole_fail('ModuleNotFound');
}
$_REQUEST['step'] = 2;
$_REQUEST['savedata'] = 'N';
ob_start();
$module->DoUninstall();
ob_end_clean();
if (\Bitrix\Main\ModuleManager::isModuleInstalled($code)) {
	bxconsole_fail('ModuleUninstallFailed', bxconsole_exception_message());
}
DeleteDirFilesEx('/bitrix/modules/' . $code);
`

// buildScript wraps body with the kernel bootstrap and status reporting
func buildScript(documentRoot, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, bootstrap, phpString(documentRoot))
	fmt.Fprintf(&b, statusHelpers, phpString(statusMarker))
	b.WriteString(body)
	b.WriteString("\nbxconsole_status(true);\n")
	return b.String()
}

// phpString quotes s as a single-quoted PHP literal
func phpString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}
